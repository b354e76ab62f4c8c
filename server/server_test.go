package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/planthy/agents"
	"github.com/bububa/planthy/app"
	"github.com/bububa/planthy/vision"
)

type diagnoserFunc func(ctx context.Context, image io.Reader, query string) (*app.Diagnosis, error)

func (f diagnoserFunc) Diagnose(ctx context.Context, image io.Reader, query string) (*app.Diagnosis, error) {
	return f(ctx, image, query)
}

func multipartRequest(t *testing.T, image []byte, query string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if image != nil {
		fw, err := mw.CreateFormFile("image", "tomato.jpeg")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("query", query))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/diagnose", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const answer = "- **Early blight**\n- Remove lower leaves\n"

func echoDiagnoser(t *testing.T) Diagnoser {
	return diagnoserFunc(func(_ context.Context, image io.Reader, query string) (*app.Diagnosis, error) {
		require.NotNil(t, image)
		bs, err := io.ReadAll(image)
		require.NoError(t, err)
		assert.Equal(t, "image-bytes", string(bs))
		assert.Equal(t, "What's wrong with my tomato plant?", query)
		return &app.Diagnosis{ID: "d1", Query: query, Answer: answer}, nil
	})
}

func TestDiagnoseMarkdown(t *testing.T) {
	srv := New(echoDiagnoser(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, []byte("image-bytes"), "What's wrong with my tomato plant?"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, answer, rec.Body.String())
}

func TestDiagnoseHTML(t *testing.T) {
	srv := New(echoDiagnoser(t))
	req := multipartRequest(t, []byte("image-bytes"), "What's wrong with my tomato plant?")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<li><strong>Early blight</strong></li>")
}

func TestDiagnoseJSON(t *testing.T) {
	srv := New(echoDiagnoser(t))
	req := multipartRequest(t, []byte("image-bytes"), "What's wrong with my tomato plant?")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var diag app.Diagnosis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &diag))
	assert.Equal(t, answer, diag.Answer)
}

func TestDiagnoseMissingImage(t *testing.T) {
	srv := New(diagnoserFunc(func(_ context.Context, image io.Reader, _ string) (*app.Diagnosis, error) {
		assert.Nil(t, image)
		return nil, app.ErrInvalidInput
	}))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, nil, "help"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, app.CategoryInvalidInput, body.Category)
}

func TestDiagnoseNotMultipart(t *testing.T) {
	srv := New(diagnoserFunc(func(context.Context, io.Reader, string) (*app.Diagnosis, error) {
		t.Fatal("diagnoser must not be called")
		return nil, nil
	}))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/diagnose", strings.NewReader("query=help")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiagnoseUpstreamFailure(t *testing.T) {
	srv := New(diagnoserFunc(func(context.Context, io.Reader, string) (*app.Diagnosis, error) {
		return nil, app.Classify(vision.ErrExtraction)
	}))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, []byte("x"), "help"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, app.CategoryExtraction, body.Category)
	assert.NotEmpty(t, body.Message)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(app.CategoryInvalidInput))
	assert.Equal(t, http.StatusBadGateway, StatusFor(app.Classify(agents.ErrOrchestrator).Category))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(app.CategoryInternal))
}

func TestRoutes(t *testing.T) {
	srv := New(echoDiagnoser(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagnose", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDiagnoseTooLarge(t *testing.T) {
	t.Run("body over the form limit", func(t *testing.T) {
		srv := New(diagnoserFunc(func(context.Context, io.Reader, string) (*app.Diagnosis, error) {
			t.Fatal("diagnoser must not be called")
			return nil, nil
		}), WithMaxUploadBytes(16))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, multipartRequest(t, make([]byte, 2<<20), "help"))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, app.CategoryInvalidInput, body.Category)
	})
	t.Run("image over the upload limit", func(t *testing.T) {
		srv := New(diagnoserFunc(func(context.Context, io.Reader, string) (*app.Diagnosis, error) {
			return nil, app.Classify(fmt.Errorf("%w: over 16 bytes", app.ErrTooLarge))
		}))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, multipartRequest(t, []byte("image-bytes"), "help"))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}
