package app

import (
	"errors"
	"fmt"

	"github.com/bububa/planthy/agents"
	"github.com/bububa/planthy/tools/websearch"
	"github.com/bububa/planthy/vision"
)

// ErrInvalidInput the request is missing the image or the query, or the image is unusable
var ErrInvalidInput = errors.New("invalid input")

// ErrTooLarge the uploaded image is over the size limit, it is an ErrInvalidInput
var ErrTooLarge = fmt.Errorf("%w: image too large", ErrInvalidInput)

// Category groups failures for display
type Category string

const (
	CategoryInvalidInput Category = "invalid_input"
	CategoryExtraction   Category = "extraction"
	CategorySchemaParse  Category = "schema_parse"
	CategorySearch       Category = "search"
	CategoryOrchestrator Category = "orchestrator"
	CategoryInternal     Category = "internal"
)

// Failure is the error returned by Shell.Diagnose, Message is safe to show to users
type Failure struct {
	Category Category
	Message  string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Category, f.Message)
	}
	return fmt.Sprintf("%s: %s: %v", f.Category, f.Message, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Classify maps err to a Failure, the most specific cause wins
func Classify(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	ret := &Failure{Err: err}
	switch {
	case errors.Is(err, ErrTooLarge):
		ret.Category, ret.Message = CategoryInvalidInput, "The plant image is larger than the upload limit."
	case errors.Is(err, ErrInvalidInput):
		ret.Category, ret.Message = CategoryInvalidInput, "Please upload a plant image (jpeg, png, gif or webp) and enter a question."
	case errors.Is(err, vision.ErrSchemaParse):
		ret.Category, ret.Message = CategorySchemaParse, "The image analysis returned an unreadable report."
	case errors.Is(err, vision.ErrExtraction):
		ret.Category, ret.Message = CategoryExtraction, "The plant image could not be analyzed."
	case errors.Is(err, websearch.ErrSearch):
		ret.Category, ret.Message = CategorySearch, "The web search for care information failed."
	case errors.Is(err, agents.ErrOrchestrator):
		ret.Category, ret.Message = CategoryOrchestrator, "The assistant could not complete the diagnosis."
	default:
		ret.Category, ret.Message = CategoryInternal, "Something went wrong while processing the request."
	}
	return ret
}
