package dbhelper

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ray-remotestate/gspot/models"
)

const paymentColumns = `id, name, account_number, account_name, qr_code_url, active, sort_order, created_at`

func scanPaymentMethod(row scanner) (models.PaymentMethod, error) {
	var pm models.PaymentMethod
	err := row.Scan(&pm.ID, &pm.Name, &pm.AccountNumber, &pm.AccountName, &pm.QRCodeURL,
		&pm.Active, &pm.SortOrder, &pm.CreatedAt)
	return pm, err
}

func (s *Store) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payment_methods
		WHERE active
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	methods := []models.PaymentMethod{}
	for rows.Next() {
		pm, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, pm)
	}
	return methods, rows.Err()
}

func (s *Store) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	pm, err := scanPaymentMethod(s.DB.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_methods WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

func (s *Store) UpsertPaymentMethod(ctx context.Context, pm models.PaymentMethod) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO payment_methods (id, name, account_number, account_name, qr_code_url, active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, account_number = EXCLUDED.account_number,
			account_name = EXCLUDED.account_name, qr_code_url = EXCLUDED.qr_code_url,
			active = EXCLUDED.active, sort_order = EXCLUDED.sort_order`,
		pm.ID, pm.Name, pm.AccountNumber, pm.AccountName, pm.QRCodeURL, pm.Active, pm.SortOrder)
	return err
}
