package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository runs the shortener.Repository contract against a fresh store
// returned by newRepo. Codes and URLs are prefixed so shared backends can be reused.
func testRepository(t *testing.T, prefix string, newRepo func(t *testing.T) shortener.Repository) {
	t.Helper()

	ctx := context.Background()

	code := func(s string) shortener.Code { return shortener.Code(prefix + s) }
	url := func(s string) string { return "https://example.com/" + prefix + s }

	t.Run("insert assigns id and created at", func(t *testing.T) {
		repo := newRepo(t)

		m := &shortener.Mapping{Code: code("ins1"), LongURL: url("ins1")}
		require.NoError(t, repo.Insert(ctx, m))

		assert.Positive(t, m.ID)
		assert.False(t, m.CreatedAt.IsZero())
	})

	t.Run("ids increase", func(t *testing.T) {
		repo := newRepo(t)

		first := &shortener.Mapping{Code: code("seq1"), LongURL: url("seq1")}
		second := &shortener.Mapping{Code: code("seq2"), LongURL: url("seq2")}

		require.NoError(t, repo.Insert(ctx, first))
		require.NoError(t, repo.Insert(ctx, second))

		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("find by code and long url", func(t *testing.T) {
		repo := newRepo(t)

		m := &shortener.Mapping{Code: code("find1"), LongURL: url("find1")}
		require.NoError(t, repo.Insert(ctx, m))

		byCode, err := repo.FindByCode(ctx, m.Code)
		require.NoError(t, err)
		assert.Equal(t, m.LongURL, byCode.LongURL)
		assert.Equal(t, m.ID, byCode.ID)

		byURL, err := repo.FindByLongURL(ctx, m.LongURL)
		require.NoError(t, err)
		assert.Equal(t, m.Code, byURL.Code)
	})

	t.Run("exists reports allocated codes only", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Insert(ctx, &shortener.Mapping{Code: code("ex1"), LongURL: url("ex1")}))

		exists, err := repo.Exists(ctx, code("ex1"))
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.Exists(ctx, code("ex2"))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("unknown lookups return ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		m, err := repo.FindByCode(ctx, code("missing"))
		assert.Nil(t, m)
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		m, err = repo.FindByLongURL(ctx, url("missing"))
		assert.Nil(t, m)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("duplicate code is rejected and the first mapping kept", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Insert(ctx, &shortener.Mapping{Code: code("dup1"), LongURL: url("old")}))

		err := repo.Insert(ctx, &shortener.Mapping{Code: code("dup1"), LongURL: url("new")})
		assert.ErrorIs(t, err, shortener.ErrDuplicateCode)

		got, err := repo.FindByCode(ctx, code("dup1"))
		require.NoError(t, err)
		assert.Equal(t, url("old"), got.LongURL)

		_, err = repo.FindByLongURL(ctx, url("new"))
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("duplicate long url is rejected", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Insert(ctx, &shortener.Mapping{Code: code("url1"), LongURL: url("same")}))

		err := repo.Insert(ctx, &shortener.Mapping{Code: code("url2"), LongURL: url("same")})
		assert.ErrorIs(t, err, shortener.ErrDuplicateURL)

		exists, err := repo.Exists(ctx, code("url2"))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("concurrent inserts of the same code have one winner", func(t *testing.T) {
		repo := newRepo(t)

		const n = 20

		errs := make([]error, n)

		var wg sync.WaitGroup

		for i := range n {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				errs[i] = repo.Insert(ctx, &shortener.Mapping{
					Code:    code("race1"),
					LongURL: url(fmt.Sprintf("race/%d", i)),
				})
			}(i)
		}

		wg.Wait()

		wins := 0

		for _, err := range errs {
			if err == nil {
				wins++

				continue
			}

			assert.ErrorIs(t, err, shortener.ErrDuplicateCode)
		}

		assert.Equal(t, 1, wins)
	})
}
