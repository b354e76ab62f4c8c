// Package app is the application shell: it persists the uploaded image, asks the
// orchestrator for a diagnosis and reports failures by category.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/bububa/planthy/vision"
)

const (
	DefaultMaxUploadBytes int64 = 10 << 20
	DefaultMaxConcurrent  int64 = 4
)

// Orchestrator answers a combined instruction, *agents.Orchestrator satisfies it
type Orchestrator interface {
	Chat(ctx context.Context, instruction string) (string, error)
}

// Diagnosis is a successful answer
type Diagnosis struct {
	ID      string        `json:"id"`
	Query   string        `json:"query"`
	Answer  string        `json:"answer"`
	Elapsed time.Duration `json:"elapsed"`
}

type Config struct {
	uploadDir      string
	maxUploadBytes int64
	maxConcurrent  int64
	requestTimeout time.Duration
	logger         *zap.Logger
	stateHook      func(string, State)
}

type Shell struct {
	Config
	orchestrator Orchestrator
	sem          *semaphore.Weighted
}

func New(orchestrator Orchestrator, opts ...Option) (*Shell, error) {
	if orchestrator == nil {
		return nil, errors.New("app: orchestrator is required")
	}
	ret := &Shell{orchestrator: orchestrator}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.uploadDir == "" {
		ret.uploadDir = filepath.Join(os.TempDir(), "planthy")
	}
	if ret.maxUploadBytes <= 0 {
		ret.maxUploadBytes = DefaultMaxUploadBytes
	}
	if ret.maxConcurrent <= 0 {
		ret.maxConcurrent = DefaultMaxConcurrent
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	ret.sem = semaphore.NewWeighted(ret.maxConcurrent)
	return ret, nil
}

// UploadDir is where request images are written
func (s *Shell) UploadDir() string {
	return s.uploadDir
}

// Instruction is the single message handed to the orchestrator
func Instruction(imagePath string, query string) string {
	return fmt.Sprintf("Analyze this plant image : %s, give a recommendations to cure the issue and return the answer in points. User query: %s", imagePath, query)
}

// Diagnose runs one request through Idle, ImagePersisted, OrchestratorInvoked and
// ResultReady. Any failure is returned as a *Failure and no partial answer is produced.
func (s *Shell) Diagnose(ctx context.Context, image io.Reader, query string) (*Diagnosis, error) {
	startTime := time.Now()
	req := newRequest(uuid.NewString(), s.stateHook)
	logger := s.logger.With(zap.String("request_id", req.id))
	answer, err := s.diagnose(ctx, req, image, query)
	if err != nil {
		failure := Classify(err)
		req.transition(StateFailed)
		logger.Warn("diagnosis failed", zap.String("category", string(failure.Category)), zap.Duration("elapsed", time.Since(startTime)), zap.Error(err))
		return nil, failure
	}
	req.transition(StateResultReady)
	logger.Info("diagnosis ready", zap.Int("answer_bytes", len(answer)), zap.Duration("elapsed", time.Since(startTime)))
	return &Diagnosis{
		ID:      req.id,
		Query:   query,
		Answer:  answer,
		Elapsed: time.Since(startTime),
	}, nil
}

func (s *Shell) diagnose(ctx context.Context, req *request, image io.Reader, query string) (string, error) {
	if image == nil {
		return "", fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for a free slot: %w", err)
	}
	defer s.sem.Release(1)

	path, err := s.persist(req.id, image)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("remove upload failed", zap.String("path", path), zap.Error(err))
		}
	}()
	req.transition(StateImagePersisted)

	instruction := Instruction(path, query)
	req.transition(StateOrchestratorInvoked)
	return s.orchestrator.Chat(ctx, instruction)
}

// persist writes the image under a name unique to the request
func (s *Shell) persist(id string, image io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(image, s.maxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return "", fmt.Errorf("%w: over %d bytes", ErrTooLarge, s.maxUploadBytes)
	}
	mtype, err := vision.DetectImage(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := os.MkdirAll(s.uploadDir, 0o700); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.uploadDir, id+mtype.Extension())
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}
