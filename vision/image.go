package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"

	"github.com/bububa/planthy/schema"
)

// SupportedMimeTypes image formats accepted by the extractor
var SupportedMimeTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// DetectImage returns the mime type of data, failing when it is not a supported image
func DetectImage(data []byte) (*mimetype.MIME, error) {
	mtype := mimetype.Detect(data)
	for _, v := range SupportedMimeTypes {
		if mtype.Is(v) {
			return mtype, nil
		}
	}
	return nil, fmt.Errorf("unsupported image type %s", mtype.String())
}

// LoadImage reads the image at path. Images whose longer side exceeds maxDimension
// are downscaled and re-encoded as jpeg, 0 keeps the original bytes.
func LoadImage(path string, maxDimension uint) (*schema.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mtype, err := DetectImage(data)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if maxDimension == 0 || (uint(cfg.Width) <= maxDimension && uint(cfg.Height) <= maxDimension) {
		return &schema.Image{MimeType: mtype.String(), Data: data}, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	thumb := resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return &schema.Image{MimeType: "image/jpeg", Data: buf.Bytes()}, nil
}
