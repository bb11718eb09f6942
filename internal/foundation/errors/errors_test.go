package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		assert.True(t, exists)
		assert.Equal(t, "config.yaml", file)
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := NotFoundError("layout not found").WithContext("layout", "l1").Build()
		wrapped := fmt.Errorf("resolve: %w", inner)

		assert.True(t, IsClassified(wrapped))
		assert.True(t, HasCategory(wrapped, CategoryNotFound))
		assert.Equal(t, SeverityError, GetSeverity(wrapped))
		assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
	})

	t.Run("Sentinel matching ignores context", func(t *testing.T) {
		sentinel := NotFoundError("document not found").Build()
		err := sentinel.WithContext("document_id", "p1")

		assert.ErrorIs(t, err, sentinel)
		_, hasID := sentinel.Context().Get("document_id")
		assert.False(t, hasID, "WithContext must not mutate the receiver")
	})
}

func TestErrorBuilder(t *testing.T) {
	original := stderrors.New("disk full")
	err := WrapError(original, CategoryBlob, "upload failed").
		Warning().
		WithContext("bucket", "www").
		Build()

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryBackoff, BlobError("x").Build().RetryStrategy())
	assert.ErrorIs(t, err, original)
	assert.True(t, StoreError("x").Build().CanRetry())
	assert.False(t, ConfigError("x").Build().CanRetry())
	assert.True(t, ConfigError("x").Build().IsFatal())
}

func TestSummaryAndDescribe(t *testing.T) {
	err := RenderError("template failed").
		WithContext("document_id", "p3").
		WithCause(stderrors.New("unexpected EOF")).
		Build()

	assert.Equal(t, "template failed (document p3): unexpected EOF", err.Summary())
	assert.Equal(t, err.Summary(), Describe(fmt.Errorf("wrap: %w", err)))
	assert.Equal(t, "boom", Describe(stderrors.New("boom")))
	assert.Empty(t, Describe(nil))
}

func TestHTTPErrorAdapter(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", ValidationError("bad").Build(), http.StatusBadRequest},
		{"not found", NotFoundError("missing").Build(), http.StatusNotFound},
		{"store", StoreError("down").Build(), http.StatusBadGateway},
		{"render", RenderError("broken").Build(), http.StatusUnprocessableEntity},
		{"unclassified", stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.StatusCodeFor(tt.err))
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	adapter.WriteErrorResponse(rec, req, NotFoundError("document not found").WithContext("document_id", "p9").Build())
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"error":"document not found (document p9)","code":"not_found","details":{"document_id":"p9"}}`, rec.Body.String())
}

func TestCLIErrorAdapter(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	assert.Equal(t, 0, adapter.ExitCodeFor(nil))
	assert.Equal(t, 7, adapter.ExitCodeFor(ConfigError("bad").Build()))
	assert.Equal(t, 11, adapter.ExitCodeFor(PublishError("partial").Build()))
	assert.Equal(t, 1, adapter.ExitCodeFor(stderrors.New("plain")))
	assert.Equal(t, "Error: bad config", adapter.FormatError(ConfigError("bad config").Build()))

	verbose := NewCLIErrorAdapter(true, nil)
	assert.Equal(t, "[config:fatal] bad config", verbose.FormatError(ConfigError("bad config").Build()))
	assert.Equal(t, 8, verbose.Report(QueueError("nats down").Build()))
}
