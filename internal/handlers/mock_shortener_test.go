package handlers_test

import (
	"context"
	"errors"

	"github.com/serroba/shortlink/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com"

// mockShortener is a test double for handlers.Shortener that can be configured to return errors.
type mockShortener struct {
	shortenErr error
	resolveErr error
	resolved   string
	found      bool
}

func (m *mockShortener) Shorten(_ context.Context, longURL string) (*shortener.Mapping, error) {
	if m.shortenErr != nil {
		return nil, m.shortenErr
	}

	return &shortener.Mapping{ID: 1, Code: "abc123", LongURL: longURL}, nil
}

func (m *mockShortener) Resolve(_ context.Context, _ shortener.Code) (string, bool, error) {
	if m.resolveErr != nil {
		return "", false, m.resolveErr
	}

	return m.resolved, m.found, nil
}
