package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"flowershop/internal/config"
	"flowershop/internal/models"
)

// ErrBouquetNotFound is returned when a bouquet id does not resolve,
// e.g. after the catalog was reloaded without it.
var ErrBouquetNotFound = errors.New("bouquet not found")

const bouquetColumns = "id, name, description, price, occasion, image"

// BouquetsByOccasion returns active bouquets tagged with the occasion.
func (s *Store) BouquetsByOccasion(ctx context.Context, occasion string) ([]models.Bouquet, error) {
	key := "bouquets:occasion:" + occasion
	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}
	bouquets, err := s.queryBouquets(ctx,
		"SELECT "+bouquetColumns+" FROM bouquets WHERE is_active = 1 AND occasion = ? ORDER BY price",
		occasion,
	)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, bouquets)
	return bouquets, nil
}

// BouquetsByOccasionAndMaxPrice returns active bouquets for the occasion
// priced at or below maxPrice.
func (s *Store) BouquetsByOccasionAndMaxPrice(ctx context.Context, occasion string, maxPrice int) ([]models.Bouquet, error) {
	key := fmt.Sprintf("bouquets:occasion:%s:max:%d", occasion, maxPrice)
	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}
	bouquets, err := s.queryBouquets(ctx,
		"SELECT "+bouquetColumns+" FROM bouquets WHERE is_active = 1 AND occasion = ? AND price <= ? ORDER BY price",
		occasion, maxPrice,
	)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, bouquets)
	return bouquets, nil
}

// ListBouquets returns the whole active collection.
func (s *Store) ListBouquets(ctx context.Context) ([]models.Bouquet, error) {
	key := "bouquets:all"
	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}
	bouquets, err := s.queryBouquets(ctx,
		"SELECT "+bouquetColumns+" FROM bouquets WHERE is_active = 1 ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, bouquets)
	return bouquets, nil
}

// BouquetByID returns a bouquet or ErrBouquetNotFound.
func (s *Store) BouquetByID(ctx context.Context, id int64) (*models.Bouquet, error) {
	var b models.Bouquet
	err := s.QueryRowContext(ctx,
		"SELECT "+bouquetColumns+" FROM bouquets WHERE is_active = 1 AND id = ?", id,
	).Scan(&b.ID, &b.Name, &b.Description, &b.Price, &b.Occasion, &b.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBouquetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) queryBouquets(ctx context.Context, query string, args ...any) ([]models.Bouquet, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bouquets []models.Bouquet
	for rows.Next() {
		var b models.Bouquet
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Price, &b.Occasion, &b.Image); err != nil {
			return nil, err
		}
		bouquets = append(bouquets, b)
	}
	return bouquets, rows.Err()
}

// SyncCatalogFromConfig upserts bouquets from catalog.yaml and deactivates
// rows no longer present. Called at startup and on hot reload.
func (s *Store) SyncCatalogFromConfig(ctx context.Context, cfg *config.CatalogConfig) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE bouquets SET is_active = 0"); err != nil {
		return fmt.Errorf("deactivate bouquets: %w", err)
	}
	for _, b := range cfg.Bouquets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bouquets (id, name, description, price, occasion, image, is_active)
			VALUES (?, ?, ?, ?, ?, ?, 1)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				price = excluded.price,
				occasion = excluded.occasion,
				image = excluded.image,
				is_active = 1,
				updated_at = CURRENT_TIMESTAMP`,
			b.ID, b.Name, b.Description, b.Price, b.Occasion, b.Image,
		)
		if err != nil {
			return fmt.Errorf("upsert bouquet %q: %w", b.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.invalidateCatalogCache(ctx)
	return nil
}

func (s *Store) readCache(ctx context.Context, key string) ([]models.Bouquet, bool) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var bouquets []models.Bouquet
	if err := json.Unmarshal([]byte(val), &bouquets); err != nil {
		return nil, false
	}
	return bouquets, true
}

func (s *Store) writeCache(ctx context.Context, key string, bouquets []models.Bouquet) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(bouquets)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, key, data, s.cacheTTL).Err()
}

func (s *Store) invalidateCatalogCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	iter := s.redis.Scan(ctx, 0, "bouquets:*", 0).Iterator()
	for iter.Next(ctx) {
		_ = s.redis.Del(ctx, iter.Val()).Err()
	}
}
