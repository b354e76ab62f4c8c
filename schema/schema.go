package schema

import "encoding/json"

// Schema is message schema interface
type Schema interface {
	// Attachement() returns schema attchement
	Attachement() *Attachement
}

type SchemaPointer interface {
	Schema
	SetAttachement(*Attachement)
}

func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	switch v := s.(type) {
	case String:
		return string(v)
	case Text:
		return v.Content
	case *Text:
		return v.Content
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}
