// Package plantimage exposes the image extractor as the analyze_plant_image tool
package plantimage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bububa/planthy/schema"
	"github.com/bububa/planthy/tools"
)

const (
	ToolName        = "analyze_plant_image"
	ToolDescription = "Analyzes a plant image to identify type, condition, and symptoms."
)

// ErrOutsideRoot the requested image is not inside the allowed directory
var ErrOutsideRoot = errors.New("image path outside upload directory")

// Analyzer extracts a report from an image file
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*schema.PlantHealthReport, error)
}

// Input for the analyze_plant_image tool
type Input struct {
	// ImagePath path of the uploaded image
	ImagePath string `json:"image_path" jsonschema:"title=image_path,description=Filesystem path of the plant image to analyze." validate:"required"`
}

type Config struct {
	tools.Config
	analyzer Analyzer
	root     string
}

// Tool analyzes images found under root
type Tool struct {
	Config
}

type Option func(*Config)

// WithRoot restricts analyzed paths to dir, empty allows any path
func WithRoot(dir string) Option {
	return func(c *Config) {
		c.root = dir
	}
}

// WithToolOptions applies title, description and hook options
func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}

func New(analyzer Analyzer, opts ...Option) *Tool {
	ret := &Tool{Config: Config{analyzer: analyzer}}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle(ToolName)
	}
	if ret.Description() == "" {
		ret.SetDescription(ToolDescription)
	}
	return ret
}

// Run implements tools.Tool
func (t *Tool) Run(ctx context.Context, in *Input) (*schema.PlantHealthReport, error) {
	path, err := t.resolve(in.ImagePath)
	if err != nil {
		return nil, err
	}
	return t.analyzer.Analyze(ctx, path)
}

func (t *Tool) resolve(path string) (string, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if t.root == "" {
		return path, nil
	}
	root, err := filepath.Abs(t.root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return abs, nil
}
