package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ray-remotestate/gspot/database"
	"github.com/ray-remotestate/gspot/models"
)

// RateLimitWindow is how long a contact number waits between orders.
const RateLimitWindow = time.Minute

const orderColumns = `id, customer_name, contact_number, service_type, address, pickup_time,
	party_size, dine_in_time, payment_method, reference_number, notes, total, status,
	receipt_url, created_at`

func scanOrder(row scanner) (models.Order, error) {
	var (
		o                                             models.Order
		address, pickup, dineIn, reference, notes, rc sql.NullString
		partySize                                     sql.NullInt64
	)
	err := row.Scan(&o.ID, &o.CustomerName, &o.ContactNumber, &o.ServiceType, &address, &pickup,
		&partySize, &dineIn, &o.PaymentMethod, &reference, &notes, &o.Total, &o.Status,
		&rc, &o.CreatedAt)
	if err != nil {
		return o, err
	}
	o.Address = address.String
	o.PickupTime = pickup.String
	o.PartySize = int(partySize.Int64)
	o.DineInTime = dineIn.String
	o.ReferenceNumber = reference.String
	o.Notes = notes.String
	o.ReceiptURL = rc.String
	o.Items = []models.OrderItem{}
	return o, nil
}

// CreateOrder validates identifiers, applies the per-contact rate limit,
// takes stock and inserts the order with its items in one transaction.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := checkIdentifiers(o); err != nil {
		return err
	}

	return database.Tx(s.DB, func(tx *sql.Tx) error {
		// Serialize orders from the same contact so the rate limit holds.
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, o.ContactNumber); err != nil {
			return err
		}

		var recent bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM orders
				WHERE contact_number = $1 AND created_at > now() - $2::interval
			)`, o.ContactNumber, fmt.Sprintf("%d seconds", int(RateLimitWindow.Seconds()))).Scan(&recent)
		if err != nil {
			return err
		}
		if recent {
			return models.ErrRateLimited
		}

		for _, it := range o.Items {
			if err := takeStock(ctx, tx, it.MenuItemID, it.Quantity); err != nil {
				return err
			}
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO orders (customer_name, contact_number, service_type, address, pickup_time,
				party_size, dine_in_time, payment_method, reference_number, notes, total, receipt_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, status, created_at`,
			o.CustomerName, o.ContactNumber, o.ServiceType, nullString(o.Address), nullString(o.PickupTime),
			nullInt(o.PartySize), nullString(o.DineInTime), o.PaymentMethod, nullString(o.ReferenceNumber),
			nullString(o.Notes), o.Total, nullString(o.ReceiptURL)).
			Scan(&o.ID, &o.Status, &o.CreatedAt)
		if err != nil {
			return classify(err)
		}

		for i := range o.Items {
			it := &o.Items[i]
			it.OrderID = o.ID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, item_id, name, variation, add_ons, unit_price, quantity, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`,
				o.ID, it.MenuItemID, it.Name, it.Variation, it.AddOns, it.UnitPrice, it.Quantity, it.Subtotal).
				Scan(&it.ID)
			if err != nil {
				return classify(err)
			}
		}
		return nil
	})
}

func checkIdentifiers(o *models.Order) error {
	var missing []string
	if strings.TrimSpace(o.CustomerName) == "" {
		missing = append(missing, "customer_name")
	}
	if strings.TrimSpace(o.ContactNumber) == "" {
		missing = append(missing, "contact_number")
	}
	if len(o.Items) == 0 {
		missing = append(missing, "items")
	}
	for _, it := range o.Items {
		if it.MenuItemID == uuid.Nil {
			missing = append(missing, "item_id")
			break
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", models.ErrMissingIdentifiers, strings.Join(missing, ", "))
	}
	return nil
}

// takeStock decrements tracked stock; untracked items only need to exist
// and be available.
func takeStock(ctx context.Context, tx *sql.Tx, id uuid.UUID, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE menu_items
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND available AND (stock_quantity IS NULL OR stock_quantity >= $2)`, id, qty)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	var (
		name      string
		available bool
		stock     sql.NullInt64
	)
	err = tx.QueryRowContext(ctx, `SELECT name, available, stock_quantity FROM menu_items WHERE id = $1`, id).
		Scan(&name, &available, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: menu item %s", models.ErrMissingIdentifiers, id)
	}
	if err != nil {
		return err
	}
	if !available {
		return &models.StockError{Item: name}
	}
	return &models.StockError{Item: name, Available: int(stock.Int64)}
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return s.oneWithItems(ctx, row)
}

// SearchOrderByID calls the search_order_by_id database function.
func (s *Store) SearchOrderByID(ctx context.Context, term string) (*models.Order, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM search_order_by_id($1)`, term)
	return s.oneWithItems(ctx, row)
}

func (s *Store) LatestOrderByContact(ctx context.Context, contact string) (*models.Order, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE contact_number = $1
		ORDER BY created_at DESC
		LIMIT 1`, contact)
	return s.oneWithItems(ctx, row)
}

func (s *Store) oneWithItems(ctx context.Context, row *sql.Row) (*models.Order, error) {
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	orders := []models.Order{o}
	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// RecentOrders returns the newest orders with their items.
func (s *Store) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	return s.ListOrders(ctx, OrderFilter{Limit: limit, WithItems: true})
}

type OrderFilter struct {
	Status    models.OrderStatus
	Limit     int
	WithItems bool
}

// ListOrders returns orders newest first.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if f.WithItems {
		if err := s.attachItems(ctx, orders); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *Store) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		index[o.ID] = i
		ids[i] = o.ID.String()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, order_id, item_id, name, variation, add_ons, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it     models.OrderItem
			itemID uuid.NullUUID
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &itemID, &it.Name, &it.Variation, &it.AddOns,
			&it.UnitPrice, &it.Quantity, &it.Subtotal); err != nil {
			return err
		}
		it.MenuItemID = itemID.UUID
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

// UpdateOrderStatus sets the status and returns the updated order.
func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	row := s.DB.QueryRowContext(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns, id, status)
	return s.oneWithItems(ctx, row)
}

// DeleteOrders removes the orders and their items in one statement.
func (s *Store) DeleteOrders(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}

	var deleted int64
	err := database.Tx(s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ANY($1::uuid[])`, pq.Array(strs))
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if deleted != int64(len(ids)) {
			return fmt.Errorf("deleted %d of %d orders", deleted, len(ids))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
