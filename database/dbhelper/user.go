package dbhelper

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ray-remotestate/gspot/database"
	"github.com/ray-remotestate/gspot/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

func CreateUser(ctx context.Context, tx *sql.Tx, name, email, hashedPassword string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, `INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`,
		name, email, hashedPassword).Scan(&id)
	return id, err
}

func AssignRole(ctx context.Context, tx *sql.Tx, userID uuid.UUID, role models.Role) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role)
	return err
}

// CreateUserWithRole inserts the user and its role together.
func (s *Store) CreateUserWithRole(ctx context.Context, name, email, hashedPassword string, role models.Role) (uuid.UUID, error) {
	var userID uuid.UUID
	err := database.Tx(s.DB, func(tx *sql.Tx) error {
		var err error
		userID, err = CreateUser(ctx, tx, name, email, hashedPassword)
		if err != nil {
			return err
		}
		return AssignRole(ctx, tx, userID, role)
	})
	return userID, err
}

func (s *Store) IsUserExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL
		)`, email).Scan(&exists)
	return exists, err
}

// GetUserByPassword returns the active user when the password matches.
func (s *Store) GetUserByPassword(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, email, password, created_at FROM users
		WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *Store) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT role FROM user_roles
		WHERE user_id = $1 AND archived_at IS NULL`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
