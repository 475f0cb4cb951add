package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBouquet(id int64, name string) BouquetConfig {
	return BouquetConfig{ID: id, Name: name, Price: 900, Occasion: "birthday"}
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog CatalogConfig
		wantErr string
	}{
		{
			name:    "empty catalog",
			catalog: CatalogConfig{},
			wantErr: "no bouquets",
		},
		{
			name:    "non-positive id",
			catalog: CatalogConfig{Bouquets: []BouquetConfig{{ID: 0, Name: "x", Price: 100, Occasion: "birthday"}}},
			wantErr: "id must be positive",
		},
		{
			name:    "duplicate id",
			catalog: CatalogConfig{Bouquets: []BouquetConfig{validBouquet(1, "a"), validBouquet(1, "b")}},
			wantErr: "duplicate id",
		},
		{
			name:    "missing name",
			catalog: CatalogConfig{Bouquets: []BouquetConfig{{ID: 1, Price: 100, Occasion: "birthday"}}},
			wantErr: "name is required",
		},
		{
			name:    "duplicate name",
			catalog: CatalogConfig{Bouquets: []BouquetConfig{validBouquet(1, "a"), validBouquet(2, "a")}},
			wantErr: "duplicate name",
		},
		{
			name:    "non-positive price",
			catalog: CatalogConfig{Bouquets: []BouquetConfig{{ID: 1, Name: "a", Price: 0, Occasion: "birthday"}}},
			wantErr: "price must be positive",
		},
		{
			name:    "unknown occasion",
			catalog: CatalogConfig{Bouquets: []BouquetConfig{{ID: 1, Name: "a", Price: 100, Occasion: "halloween"}}},
			wantErr: "unknown occasion",
		},
		{
			name:    "ok",
			catalog: CatalogConfig{Bouquets: []BouquetConfig{validBouquet(1, "a"), validBouquet(2, "b")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.catalog.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bouquets:
  - id: 1
    name: "Нежность"
    description: "розы"
    price: 900
    occasion: "birthday"
    image: "tenderness.jpg"
`), 0o644))

	cfg, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, cfg.Bouquets, 1)
	assert.Equal(t, "Нежность", cfg.Bouquets[0].Name)
	assert.Equal(t, "tenderness.jpg", cfg.Bouquets[0].Image)
}

func TestWatchCatalogReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	write := func(name string) {
		require.NoError(t, os.WriteFile(path, []byte(`
bouquets:
  - id: 1
    name: "`+name+`"
    price: 900
    occasion: "birthday"
`), 0o644))
	}
	write("Первый")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zerolog.Nop()
	updates := make(chan *CatalogConfig, 4)
	err := WatchCatalog(ctx, path, 20*time.Millisecond, &logger, func(cfg *CatalogConfig) {
		updates <- cfg
	})
	require.NoError(t, err)

	first := <-updates
	assert.Equal(t, "Первый", first.Bouquets[0].Name)

	write("Обновлённый")

	select {
	case cfg := <-updates:
		assert.Equal(t, "Обновлённый", cfg.Bouquets[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("catalog change was not picked up")
	}
}

func TestWatchCatalogKeepsLastGoodVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	valid := func(name string) string {
		return `
bouquets:
  - id: 1
    name: "` + name + `"
    price: 900
    occasion: "birthday"
`
	}
	require.NoError(t, os.WriteFile(path, []byte(valid("Первый")), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zerolog.Nop()
	updates := make(chan *CatalogConfig, 4)
	err := WatchCatalog(ctx, path, 20*time.Millisecond, &logger, func(cfg *CatalogConfig) {
		updates <- cfg
	})
	require.NoError(t, err)
	<-updates

	// A broken version must not reach onUpdate.
	require.NoError(t, os.WriteFile(path, []byte("bouquets: [{id: 1, price: -5}]"), 0o644))
	select {
	case cfg := <-updates:
		t.Fatalf("invalid catalog must be rejected, got %v", cfg)
	case <-time.After(200 * time.Millisecond):
	}

	// Fixing the file resumes updates.
	require.NoError(t, os.WriteFile(path, []byte(valid("Исправленный")), 0o644))
	select {
	case cfg := <-updates:
		assert.Equal(t, "Исправленный", cfg.Bouquets[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("fixed catalog was not picked up")
	}
}
