package schema

import (
	"encoding/base64"
	"fmt"
)

// Image is an inline image carried by a message
type Image struct {
	// MimeType of the image data, e.g. image/jpeg
	MimeType string `json:"mime_type,omitempty"`
	// Data raw encoded image bytes
	Data []byte `json:"-"`
}

// Base64 returns the image data in standard base64 encoding
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data url suitable for image_url message parts
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MimeType, i.Base64())
}

// Attachement message attachement
type Attachement struct {
	// ImageURLs attached image_url
	ImageURLs []string `json:"image_url,omitempty"`
	// Images attached inline images
	Images []Image `json:"images,omitempty"`
}

// AddImage appends an inline image
func (a *Attachement) AddImage(img Image) *Attachement {
	a.Images = append(a.Images, img)
	return a
}

// HasImages reports whether the attachement carries any image
func (a *Attachement) HasImages() bool {
	return a != nil && (len(a.ImageURLs) > 0 || len(a.Images) > 0)
}

// URLs returns every image as an url, inline images are encoded as data urls
func (a *Attachement) URLs() []string {
	if a == nil {
		return nil
	}
	list := make([]string, 0, len(a.ImageURLs)+len(a.Images))
	list = append(list, a.ImageURLs...)
	for _, img := range a.Images {
		list = append(list, img.DataURL())
	}
	return list
}
