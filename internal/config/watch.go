package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// catalogFingerprint identifies a version of the catalog file on disk.
// Size is part of the key because some filesystems round mtime to whole
// seconds, which would hide quick successive edits.
type catalogFingerprint struct {
	modTime time.Time
	size    int64
}

func fingerprintOf(path string) (catalogFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return catalogFingerprint{}, err
	}
	return catalogFingerprint{modTime: info.ModTime(), size: info.Size()}, nil
}

// WatchCatalog hands each valid version of the catalog file to onUpdate.
// The initial load is synchronous, so the caller starts with a populated
// catalog; after that a polling goroutine picks up edits. A version that
// fails to load or validate is logged and skipped, and the previous catalog
// stays active until the file is fixed.
func WatchCatalog(ctx context.Context, path string, interval time.Duration, logger *zerolog.Logger, onUpdate func(*CatalogConfig)) error {
	if path == "" {
		path = "configs/catalog.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := LoadCatalog(path)
	if err != nil {
		return err
	}
	onUpdate(cfg)

	last, err := fingerprintOf(path)
	if err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				current, err := fingerprintOf(path)
				if err != nil {
					logger.Warn().Err(err).Str("path", path).Msg("catalog stat failed")
					continue
				}
				if current == last {
					continue
				}
				// Remember the fingerprint even when the file is broken,
				// otherwise a bad version is re-reported every tick.
				last = current

				cfg, err := LoadCatalog(path)
				if err != nil {
					logger.Error().Err(err).Str("path", path).Msg("catalog reload rejected, keeping previous version")
					continue
				}
				logger.Info().Int("bouquets", len(cfg.Bouquets)).Msg("catalog file changed")
				onUpdate(cfg)
			}
		}
	}()

	return nil
}
