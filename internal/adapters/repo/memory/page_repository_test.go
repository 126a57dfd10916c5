package memory

import (
	"context"
	"testing"

	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRepositoryStoresAndReadsVersions(t *testing.T) {
	t.Parallel()

	repo := NewPageRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.StorePage(ctx, "s-1", "main", domain.Page{ID: 1, Version: 0, Title: "first"}))
	require.NoError(t, repo.StorePage(ctx, "s-1", "main", domain.Page{ID: 1, Version: 1, Title: "second"}))
	require.NoError(t, repo.StorePage(ctx, "s-2", "main", domain.Page{ID: 9, Title: "other"}))

	got, err := repo.GetPage(ctx, "s-1", "main", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	latest, err := repo.LatestPage(ctx, "s-1", "main")
	require.NoError(t, err)
	assert.Equal(t, "second", latest.Title)

	_, err = repo.GetPage(ctx, "s-1", "main", 2, 0)
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
	_, err = repo.LatestPage(ctx, "s-1", "popup")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
	assert.Equal(t, 3, repo.Len())
}

func TestPageRepositoryTrimsOldestVersions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		maxVersions int
		stored      int
		want        int
	}{
		{name: "default cap", maxVersions: 0, stored: 20, want: DefaultMaxVersions},
		{name: "explicit cap", maxVersions: 2, stored: 5, want: 2},
		{name: "under cap", maxVersions: 8, stored: 3, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewPageRepository(tt.maxVersions)
			for version := 0; version < tt.stored; version++ {
				require.NoError(t, repo.StorePage(context.Background(), "s", "main", domain.Page{ID: 1, Version: version}))
			}

			assert.Equal(t, tt.want, repo.Len())
			latest, err := repo.LatestPage(context.Background(), "s", "main")
			require.NoError(t, err)
			assert.Equal(t, tt.stored-1, latest.Version)
		})
	}
}

func TestPageRepositoryReplacesSameVersion(t *testing.T) {
	t.Parallel()

	repo := NewPageRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.StorePage(ctx, "s", "main", domain.Page{ID: 1, Title: "old"}))
	require.NoError(t, repo.StorePage(ctx, "s", "main", domain.Page{ID: 1, Title: "new"}))

	got, err := repo.GetPage(ctx, "s", "main", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, 1, repo.Len())
}

func TestPageRepositoryRemoveSession(t *testing.T) {
	t.Parallel()

	repo := NewPageRepository(0)
	ctx := context.Background()

	require.NoError(t, repo.StorePage(ctx, "s-1", "main", domain.Page{ID: 1}))
	require.NoError(t, repo.StorePage(ctx, "s-1", "popup", domain.Page{ID: 2}))
	require.NoError(t, repo.StorePage(ctx, "s-2", "main", domain.Page{ID: 3}))

	require.NoError(t, repo.RemoveSession(ctx, "s-1"))

	_, err := repo.LatestPage(ctx, "s-1", "main")
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
	_, err = repo.LatestPage(ctx, "s-2", "main")
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
}

func TestPageRepositoryHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	repo := NewPageRepository(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.StorePage(ctx, "s", "main", domain.Page{}), context.Canceled)
	assert.ErrorIs(t, repo.RemoveSession(ctx, "s"), context.Canceled)
}
