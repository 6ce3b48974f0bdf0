package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *shortener.Service {
	t.Helper()

	gen, err := shortener.NewCodeGenerator(shortener.DefaultAlphabet, shortener.DefaultCodeLength)
	require.NoError(t, err)

	return shortener.NewService(store.NewMemoryStore(), gen)
}

func newTestHandler(s handlers.Shortener) *handlers.URLHandler {
	return handlers.NewURLHandler(s, "http://localhost:8888", zap.NewNop())
}

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected huma status error, got %v", err)

	return se.GetStatus()
}

func TestCreateShortURL(t *testing.T) {
	t.Run("creates short url successfully", func(t *testing.T) {
		handler := newTestHandler(newTestService(t))

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = "https://example.com/very/long/path"

		resp, err := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err)
		assert.Len(t, resp.Body.Code, shortener.DefaultCodeLength)
		assert.Equal(t, "https://example.com/very/long/path", resp.Body.OriginalURL)
		assert.Equal(t, "http://localhost:8888/"+resp.Body.Code, resp.Body.ShortURL)
		assert.Equal(t, resp.Body.ShortURL, resp.Location)
	})

	t.Run("returns same code for same URL", func(t *testing.T) {
		handler := newTestHandler(newTestService(t))

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		resp1, err1 := handler.CreateShortURL(context.Background(), req)
		resp2, err2 := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, resp1.Body.Code, resp2.Body.Code)
	})

	t.Run("returns different codes for different URLs", func(t *testing.T) {
		handler := newTestHandler(newTestService(t))

		req1 := &handlers.CreateShortURLRequest{}
		req1.Body.URL = "https://example.com/path1"

		req2 := &handlers.CreateShortURLRequest{}
		req2.Body.URL = "https://example.com/path2"

		resp1, err1 := handler.CreateShortURL(context.Background(), req1)
		resp2, err2 := handler.CreateShortURL(context.Background(), req2)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, resp1.Body.Code, resp2.Body.Code)
	})

	t.Run("treats URLs differing only by trailing slash as distinct", func(t *testing.T) {
		handler := newTestHandler(newTestService(t))

		req1 := &handlers.CreateShortURLRequest{}
		req1.Body.URL = "https://example.com/path"

		req2 := &handlers.CreateShortURLRequest{}
		req2.Body.URL = "https://example.com/path/"

		resp1, err1 := handler.CreateShortURL(context.Background(), req1)
		resp2, err2 := handler.CreateShortURL(context.Background(), req2)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, resp1.Body.Code, resp2.Body.Code)
	})

	t.Run("returns 400 for empty url", func(t *testing.T) {
		handler := newTestHandler(newTestService(t))

		resp, err := handler.CreateShortURL(context.Background(), &handlers.CreateShortURLRequest{})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})

	t.Run("returns 500 when shortening fails", func(t *testing.T) {
		handler := newTestHandler(&mockShortener{shortenErr: errMock})

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})

	t.Run("returns 500 when allocation is exhausted", func(t *testing.T) {
		handler := newTestHandler(&mockShortener{shortenErr: shortener.ErrAllocationExhausted})

		req := &handlers.CreateShortURLRequest{}
		req.Body.URL = testURL

		_, err := handler.CreateShortURL(context.Background(), req)

		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})
}

func TestRedirectToURL(t *testing.T) {
	t.Run("redirects to original url", func(t *testing.T) {
		svc := newTestService(t)
		m, err := svc.Shorten(context.Background(), testURL)
		require.NoError(t, err)

		handler := newTestHandler(svc)

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: string(m.Code)})

		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, resp.Status)
		assert.Equal(t, testURL, resp.Location)
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(newTestService(t))

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "zzzzzz"})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
		assert.Contains(t, err.Error(), "Invalid URL")
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		handler := newTestHandler(&mockShortener{resolveErr: errMock})

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "abc123"})

		assert.Nil(t, resp)
		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})
}
