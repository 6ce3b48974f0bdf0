package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// Shortener is the allocation and lookup engine the handlers call into.
type Shortener interface {
	Shorten(ctx context.Context, longURL string) (*shortener.Mapping, error)
	Resolve(ctx context.Context, code shortener.Code) (string, bool, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	shortener Shortener
	baseURL   string
	logger    *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(s Shortener, baseURL string, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		shortener: s,
		baseURL:   baseURL,
		logger:    logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	mapping, err := h.shortener.Shorten(ctx, req.Body.URL)
	if err != nil {
		if errors.Is(err, shortener.ErrEmptyURL) {
			return nil, huma.Error400BadRequest("url must not be empty")
		}

		h.logger.Error("failed to shorten url", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	fullShortURL := fmt.Sprintf("%s/%s", h.baseURL, mapping.Code)

	resp := &CreateShortURLResponse{}
	resp.Location = fullShortURL
	resp.Body.Code = string(mapping.Code)
	resp.Body.ShortURL = fullShortURL
	resp.Body.OriginalURL = mapping.LongURL

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	longURL, found, err := h.shortener.Resolve(ctx, shortener.Code(req.Code))
	if err != nil {
		h.logger.Error("failed to resolve code", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	if !found {
		return nil, huma.Error404NotFound("Invalid URL")
	}

	return &RedirectResponse{
		Status:   http.StatusMovedPermanently,
		Location: longURL,
	}, nil
}
