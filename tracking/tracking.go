// Package tracking finds a customer's order by id fragment or phone number.
package tracking

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/models"
)

const (
	// FallbackScanLimit bounds the client-side scan when the search
	// function is unavailable.
	FallbackScanLimit = 100
	shortIDLen        = 8
)

var ErrEmptyQuery = errors.New("please enter a search value")

type Store interface {
	// SearchOrderByID runs the database search function and returns
	// models.ErrOrderNotFound when nothing matches.
	SearchOrderByID(ctx context.Context, term string) (*models.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	LatestOrderByContact(ctx context.Context, contact string) (*models.Order, error)
}

type Service struct {
	Store Store
}

// ByID looks up an order by its short id or any fragment of the full id.
func (s *Service) ByID(ctx context.Context, fragment string) (*models.Order, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, ErrEmptyQuery
	}

	order, err := s.Store.SearchOrderByID(ctx, fragment)
	if err == nil {
		return order, nil
	}
	if errors.Is(err, models.ErrOrderNotFound) {
		return nil, err
	}
	logrus.WithError(err).Warn("order search function failed, scanning recent orders")

	recent, err := s.Store.RecentOrders(ctx, FallbackScanLimit)
	if err != nil {
		return nil, err
	}
	for i := range recent {
		if MatchesID(recent[i].ID.String(), fragment) {
			return &recent[i], nil
		}
	}
	return nil, models.ErrOrderNotFound
}

// ByPhone returns the most recent order placed with the contact number.
func (s *Service) ByPhone(ctx context.Context, phone string) (*models.Order, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrEmptyQuery
	}
	return s.Store.LatestOrderByContact(ctx, phone)
}

// MatchesID reports whether fragment appears, ignoring case, in the trailing
// 8 characters of id or anywhere in it.
func MatchesID(id, fragment string) bool {
	id = strings.ToUpper(id)
	fragment = strings.ToUpper(strings.TrimSpace(fragment))
	if fragment == "" {
		return false
	}
	short := id
	if len(id) > shortIDLen {
		short = id[len(id)-shortIDLen:]
	}
	return strings.Contains(short, fragment) || strings.Contains(id, fragment)
}
