package store

import (
	"context"

	"flowershop/internal/models"
)

// GetOrCreateCustomer returns the customer for a Telegram account, creating
// an empty record on first contact. The upsert is idempotent, so concurrent
// first contacts from the same account resolve to one row.
func (s *Store) GetOrCreateCustomer(ctx context.Context, telegramID int64) (*models.Customer, error) {
	_, err := s.ExecContext(ctx,
		`INSERT INTO customers (telegram_id) VALUES (?)
		ON CONFLICT(telegram_id) DO NOTHING`,
		telegramID,
	)
	if err != nil {
		return nil, err
	}

	var c models.Customer
	err = s.QueryRowContext(ctx,
		"SELECT id, telegram_id, name, phone, address, created_at FROM customers WHERE telegram_id = ?",
		telegramID,
	).Scan(&c.ID, &c.TelegramID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCustomerName sets the customer's name by Telegram id.
func (s *Store) UpdateCustomerName(ctx context.Context, telegramID int64, name string) error {
	_, err := s.ExecContext(ctx,
		"UPDATE customers SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE telegram_id = ?",
		name, telegramID,
	)
	return err
}

// UpdateCustomerPhone sets the customer's phone by Telegram id.
func (s *Store) UpdateCustomerPhone(ctx context.Context, telegramID int64, phone string) error {
	_, err := s.ExecContext(ctx,
		"UPDATE customers SET phone = ?, updated_at = CURRENT_TIMESTAMP WHERE telegram_id = ?",
		phone, telegramID,
	)
	return err
}

// UpdateCustomerAddress sets the customer's last delivery address.
func (s *Store) UpdateCustomerAddress(ctx context.Context, telegramID int64, address string) error {
	_, err := s.ExecContext(ctx,
		"UPDATE customers SET address = ?, updated_at = CURRENT_TIMESTAMP WHERE telegram_id = ?",
		address, telegramID,
	)
	return err
}
