package shortener

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds the collision retry loop in Shorten.
const DefaultMaxAttempts = 10

// Observer receives allocation and resolution outcomes, typically for metrics.
type Observer interface {
	Allocated()
	Deduplicated()
	Collision()
	Exhausted()
	Resolved(found bool)
}

type nopObserver struct{}

func (nopObserver) Allocated()    {}
func (nopObserver) Deduplicated() {}
func (nopObserver) Collision()    {}
func (nopObserver) Exhausted()    {}
func (nopObserver) Resolved(bool) {}

// Service allocates short codes and resolves them back to long URLs.
type Service struct {
	store        Repository
	generateCode CodeGenerator
	maxAttempts  int
	observer     Observer
	logger       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMaxAttempts caps how many candidate codes Shorten tries before giving up.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service over store using generator for candidate codes.
func NewService(store Repository, generator CodeGenerator, opts ...Option) *Service {
	s := &Service{
		store:        store,
		generateCode: generator,
		maxAttempts:  DefaultMaxAttempts,
		observer:     nopObserver{},
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten returns the mapping for longURL, allocating a new code if the URL
// has not been seen before.
func (s *Service) Shorten(ctx context.Context, longURL string) (*Mapping, error) {
	if longURL == "" {
		return nil, ErrEmptyURL
	}

	existing, err := s.store.FindByLongURL(ctx, longURL)
	if err == nil {
		s.observer.Deduplicated()

		return existing, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate := Code(s.generateCode())

		taken, err := s.store.Exists(ctx, candidate)
		if err != nil {
			return nil, err
		}

		if taken {
			s.collision(candidate, attempt)

			continue
		}

		m := &Mapping{LongURL: longURL, Code: candidate}

		err = s.store.Insert(ctx, m)

		switch {
		case err == nil:
			s.observer.Allocated()

			return m, nil
		case errors.Is(err, ErrDuplicateCode):
			// Lost a race on the candidate between Exists and Insert.
			s.collision(candidate, attempt)
		case errors.Is(err, ErrDuplicateURL):
			return s.reuseWinner(ctx, longURL)
		default:
			return nil, err
		}
	}

	s.observer.Exhausted()
	s.logger.Error("short code allocation exhausted", zap.Int("attempts", s.maxAttempts))

	return nil, fmt.Errorf("%w after %d attempts", ErrAllocationExhausted, s.maxAttempts)
}

// Resolve returns the long URL for code. An unknown code yields found=false and no error.
func (s *Service) Resolve(ctx context.Context, code Code) (string, bool, error) {
	m, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.observer.Resolved(false)

			return "", false, nil
		}

		return "", false, err
	}

	s.observer.Resolved(true)

	return m.LongURL, true, nil
}

// reuseWinner returns the mapping created by a concurrent Shorten of the same URL.
func (s *Service) reuseWinner(ctx context.Context, longURL string) (*Mapping, error) {
	m, err := s.store.FindByLongURL(ctx, longURL)
	if err != nil {
		return nil, err
	}

	s.observer.Deduplicated()

	return m, nil
}

func (s *Service) collision(code Code, attempt int) {
	s.observer.Collision()
	s.logger.Debug("short code collision",
		zap.String("code", string(code)),
		zap.Int("attempt", attempt),
	)
}
