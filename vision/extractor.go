// Package vision extracts a PlantHealthReport from a plant image with a multimodal model
package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/bububa/planthy/components"
	"github.com/bububa/planthy/schema"
)

type Config struct {
	backend      Backend
	logger       *zap.Logger
	maxDimension uint
	prompt       string
}

// Extractor is safe for concurrent use, it keeps no state between calls
type Extractor struct {
	Config
}

func New(opts ...Option) (*Extractor, error) {
	ret := new(Extractor)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.backend == nil {
		return nil, errors.New("vision: backend is required")
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	if ret.prompt == "" {
		ret.prompt = Prompt
	}
	return ret, nil
}

// Analyze loads the image at path and asks the model for a structured report.
// Errors wrap ErrExtraction or ErrSchemaParse, no partial report is ever returned.
func (e *Extractor) Analyze(ctx context.Context, path string) (*schema.PlantHealthReport, error) {
	img, err := LoadImage(path, e.maxDimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	attachement := new(schema.Attachement).AddImage(*img)
	msg := components.NewMessage(components.UserRole, schema.NewText(e.prompt, attachement))
	startTime := time.Now()
	reply := new(Reply)
	llmResp, err := e.backend.Extract(ctx, msg, reply)
	if err != nil {
		err = classify(err)
		e.logger.Warn("plant image analysis failed", zap.String("path", path), zap.Duration("elapsed", time.Since(startTime)), zap.Error(err))
		return nil, err
	}
	report, err := reply.Report()
	if err != nil {
		e.logger.Warn("plant image reply rejected", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	fields := []zap.Field{
		zap.String("path", path),
		zap.String("plant_type", report.PlantType),
		zap.Float64("confidence", report.Confidence),
		zap.Duration("elapsed", time.Since(startTime)),
	}
	if llmResp != nil && llmResp.Usage != nil {
		fields = append(fields, zap.String("model", llmResp.Model), zap.Int64("input_tokens", llmResp.Usage.InputTokens), zap.Int64("output_tokens", llmResp.Usage.OutputTokens))
	}
	e.logger.Debug("plant image analyzed", fields...)
	return report, nil
}

// Close releases the backend when it holds resources
func (e *Extractor) Close() error {
	if closer, ok := e.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
