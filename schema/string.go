package schema

// String is a plain text schema
type String string

func NewString(v string) String {
	return String(v)
}

func (s String) Attachement() *Attachement {
	return nil
}

func (s String) String() string {
	return string(s)
}

// Text is a plain text schema with attachement
type Text struct {
	Base
	Content string
}

// NewText returns a new Text with an optional attachement
func NewText(content string, attachement *Attachement) *Text {
	ret := &Text{Content: content}
	ret.SetAttachement(attachement)
	return ret
}

func (t Text) String() string {
	return t.Content
}
