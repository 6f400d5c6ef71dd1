package dbhelper

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ray-remotestate/gspot/database"
	"github.com/ray-remotestate/gspot/models"
)

const menuItemColumns = `id, category_id, name, description, base_price, image_url, popular,
	available, stock_quantity, created_at`

func scanMenuItem(row scanner) (models.MenuItem, error) {
	var (
		m     models.MenuItem
		stock sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.CategoryID, &m.Name, &m.Description, &m.BasePrice, &m.ImageURL,
		&m.Popular, &m.Available, &stock, &m.CreatedAt)
	if stock.Valid {
		n := int(stock.Int64)
		m.StockQuantity = &n
	}
	return m, err
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, icon, sort_order, active, created_at
		FROM categories
		WHERE active
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.SortOrder, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListMenu returns menu items with their variations and add-ons. An empty
// category means every category.
func (s *Store) ListMenu(ctx context.Context, category string, includeUnavailable bool) ([]models.MenuItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE ($1 = '' OR category_id = $1) AND ($2 OR available)
		ORDER BY category_id, name`, category, includeUnavailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, s.attachOptions(ctx, items)
}

func (s *Store) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	m, err := scanMenuItem(s.DB.QueryRowContext(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	items := []models.MenuItem{m}
	if err := s.attachOptions(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *Store) attachOptions(ctx context.Context, items []models.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(items))
	ids := make([]string, len(items))
	for i, m := range items {
		index[m.ID] = i
		ids[i] = m.ID.String()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, menu_item_id, name, price FROM variations
		WHERE menu_item_id = ANY($1::uuid[])
		ORDER BY price, name`, pq.Array(ids))
	if err != nil {
		return err
	}
	for rows.Next() {
		var v models.Variation
		if err := rows.Scan(&v.ID, &v.MenuItemID, &v.Name, &v.Price); err != nil {
			rows.Close()
			return err
		}
		items[index[v.MenuItemID]].Variations = append(items[index[v.MenuItemID]].Variations, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.DB.QueryContext(ctx, `
		SELECT id, menu_item_id, name, price, category FROM add_ons
		WHERE menu_item_id = ANY($1::uuid[])
		ORDER BY category, name`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a models.AddOn
		if err := rows.Scan(&a.ID, &a.MenuItemID, &a.Name, &a.Price, &a.Category); err != nil {
			return err
		}
		items[index[a.MenuItemID]].AddOns = append(items[index[a.MenuItemID]].AddOns, a)
	}
	return rows.Err()
}

// CreateMenuItem inserts the item with its variations and add-ons.
func (s *Store) CreateMenuItem(ctx context.Context, m *models.MenuItem) error {
	return database.Tx(s.DB, func(tx *sql.Tx) error {
		return insertMenuItem(ctx, tx, m)
	})
}

func insertMenuItem(ctx context.Context, tx *sql.Tx, m *models.MenuItem) error {
	var stock sql.NullInt64
	if m.StockQuantity != nil {
		stock = sql.NullInt64{Int64: int64(*m.StockQuantity), Valid: true}
	}
	err := tx.QueryRowContext(ctx, `
		INSERT INTO menu_items (category_id, name, description, base_price, image_url, popular, available, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		m.CategoryID, m.Name, m.Description, m.BasePrice, m.ImageURL, m.Popular, m.Available, stock).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return classify(err)
	}
	return insertOptions(ctx, tx, m)
}

func insertOptions(ctx context.Context, tx *sql.Tx, m *models.MenuItem) error {
	for i := range m.Variations {
		v := &m.Variations[i]
		v.MenuItemID = m.ID
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO variations (menu_item_id, name, price) VALUES ($1, $2, $3) RETURNING id`,
			m.ID, v.Name, v.Price).Scan(&v.ID); err != nil {
			return err
		}
	}
	for i := range m.AddOns {
		a := &m.AddOns[i]
		a.MenuItemID = m.ID
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO add_ons (menu_item_id, name, price, category) VALUES ($1, $2, $3, $4) RETURNING id`,
			m.ID, a.Name, a.Price, a.Category).Scan(&a.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpsertMenuItem replaces an item with the same category and name,
// options included. Used by the seed command.
func (s *Store) UpsertMenuItem(ctx context.Context, m *models.MenuItem) error {
	return database.Tx(s.DB, func(tx *sql.Tx) error {
		var existing uuid.UUID
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM menu_items WHERE category_id = $1 AND name = $2`, m.CategoryID, m.Name).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return insertMenuItem(ctx, tx, m)
		}
		if err != nil {
			return err
		}

		m.ID = existing
		var stock sql.NullInt64
		if m.StockQuantity != nil {
			stock = sql.NullInt64{Int64: int64(*m.StockQuantity), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE menu_items
			SET description = $2, base_price = $3, image_url = $4, popular = $5, available = $6,
				stock_quantity = $7, updated_at = now()
			WHERE id = $1`,
			m.ID, m.Description, m.BasePrice, m.ImageURL, m.Popular, m.Available, stock); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM variations WHERE menu_item_id = $1`, m.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM add_ons WHERE menu_item_id = $1`, m.ID); err != nil {
			return err
		}
		return insertOptions(ctx, tx, m)
	})
}

func (s *Store) SetMenuItemAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE menu_items SET available = $2, updated_at = now() WHERE id = $1`, id, available)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrMenuItemNotFound
	}
	return nil
}

func (s *Store) UpsertCategory(ctx context.Context, c models.Category) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, sort_order, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, icon = EXCLUDED.icon, sort_order = EXCLUDED.sort_order, active = EXCLUDED.active`,
		c.ID, c.Name, c.Icon, c.SortOrder, c.Active)
	return err
}
