package vision

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrExtraction the image could not be loaded or the model call failed
	ErrExtraction = errors.New("extraction failed")
	// ErrSchemaParse the model reply does not match the report shape
	ErrSchemaParse = errors.New("schema parse failed")
)

// classify wraps a backend error with ErrExtraction when it comes from the transport
// and with ErrSchemaParse otherwise. Errors already carrying a sentinel pass through.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrExtraction) || errors.Is(err, ErrSchemaParse) {
		return err
	}
	var (
		oaiAPIErr *openai.APIError
		oaiReqErr *openai.RequestError
		antAPIErr *anthropic.APIError
		antReqErr *anthropic.RequestError
		urlErr    *url.Error
	)
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &oaiAPIErr),
		errors.As(err, &oaiReqErr),
		errors.As(err, &antAPIErr),
		errors.As(err, &antReqErr),
		errors.As(err, &urlErr):
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return fmt.Errorf("%w: %w", ErrSchemaParse, err)
}
