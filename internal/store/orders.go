package store

import (
	"context"
	"fmt"
	"time"

	"flowershop/internal/models"
)

// CreateOrder inserts the order together with its statistics row in a single
// transaction, so reporting never observes one without the other.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (int64, error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (customer_id, bouquet_id, address, delivery_time, status)
		VALUES (?, ?, ?, ?, ?)`,
		order.CustomerID, order.BouquetID, order.Address, order.DeliveryTime, order.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO statistics (customer_id, bouquet_id, quantity) VALUES (?, ?, 1)`,
		order.CustomerID, order.BouquetID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert statistics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	order.ID = id
	return id, nil
}

// ListOrders returns orders joined with customer and bouquet, newest first,
// optionally narrowed to one status. This backs the sales statistics endpoint.
func (s *Store) ListOrders(ctx context.Context, status string) ([]models.OrderInfo, error) {
	query := `
		SELECT o.id, c.name, c.phone, b.name, b.price,
			o.address, o.delivery_time, o.status, o.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		JOIN bouquets b ON b.id = o.bouquet_id`
	var args []any
	if status != "" {
		query += " WHERE o.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.OrderInfo
	for rows.Next() {
		var o models.OrderInfo
		if err := rows.Scan(&o.ID, &o.Customer, &o.Phone, &o.Bouquet, &o.Price,
			&o.Address, &o.DeliveryTime, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListUsageRecords returns the statistics rows, newest first.
func (s *Store) ListUsageRecords(ctx context.Context) ([]models.UsageRecord, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT id, customer_id, bouquet_id, quantity, created_at FROM statistics ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		var r models.UsageRecord
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.BouquetID, &r.Quantity, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CreateConsultation stores a callback request for the administrator.
func (s *Store) CreateConsultation(ctx context.Context, telegramID int64, phone string) error {
	_, err := s.ExecContext(ctx,
		"INSERT INTO consultations (telegram_id, phone, created_at) VALUES (?, ?, ?)",
		telegramID, phone, time.Now(),
	)
	return err
}
