package systemprompt

import "time"

// ContextProvider is an interface that defines the title and info of a context provider
type ContextProvider interface {
	Title() string
	Info() string
}

// CurrentDateProvider provides the current date in YYYY-MM-DD format
type CurrentDateProvider struct {
	title string
	now   func() time.Time
}

var _ ContextProvider = (*CurrentDateProvider)(nil)

// NewCurrentDateProvider returns a CurrentDateProvider, now defaults to time.Now
func NewCurrentDateProvider(title string, now func() time.Time) *CurrentDateProvider {
	if now == nil {
		now = time.Now
	}
	return &CurrentDateProvider{title: title, now: now}
}

func (p *CurrentDateProvider) Title() string {
	return p.title
}

func (p *CurrentDateProvider) Info() string {
	return "The current date in the format YYYY-MM-DD is " + p.now().Format(time.DateOnly)
}
