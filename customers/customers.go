// Package customers derives the customer roster shown on the admin dashboard
// from the order history. Nothing here is persisted; the roster is rebuilt
// from the orders every time it is requested.
package customers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/gspot/models"
)

type Info struct {
	Key            string               `json:"key"`
	Name           string               `json:"name"`
	ContactNumber  string               `json:"contact_number"`
	Addresses      []string             `json:"addresses"`
	OrderCount     int                  `json:"order_count"`
	TotalSpent     decimal.Decimal      `json:"total_spent"`
	FirstOrderDate time.Time            `json:"first_order_date"`
	LastOrderDate  time.Time            `json:"last_order_date"`
	OrderIDs       []uuid.UUID          `json:"order_ids"`
	ServiceTypes   []models.ServiceType `json:"service_types"`
}

// Key groups orders by lowercase "name-contact".
func Key(name, contact string) string {
	return strings.ToLower(name + "-" + contact)
}

// Aggregate builds one Info per distinct customer key, in order of first
// appearance in orders.
func Aggregate(orders []models.Order) []Info {
	index := make(map[string]int)
	var out []Info

	for _, o := range orders {
		key := Key(o.CustomerName, o.ContactNumber)
		i, ok := index[key]
		if !ok {
			c := Info{
				Key:            key,
				Name:           o.CustomerName,
				ContactNumber:  o.ContactNumber,
				Addresses:      []string{},
				OrderCount:     1,
				TotalSpent:     o.Total,
				FirstOrderDate: o.CreatedAt,
				LastOrderDate:  o.CreatedAt,
				OrderIDs:       []uuid.UUID{o.ID},
				ServiceTypes:   []models.ServiceType{o.ServiceType},
			}
			if o.Address != "" {
				c.Addresses = append(c.Addresses, o.Address)
			}
			index[key] = len(out)
			out = append(out, c)
			continue
		}

		c := &out[i]
		c.OrderCount++
		c.TotalSpent = c.TotalSpent.Add(o.Total)
		c.OrderIDs = append(c.OrderIDs, o.ID)
		if o.Address != "" && !contains(c.Addresses, o.Address) {
			c.Addresses = append(c.Addresses, o.Address)
		}
		if !contains(c.ServiceTypes, o.ServiceType) {
			c.ServiceTypes = append(c.ServiceTypes, o.ServiceType)
		}
		if o.CreatedAt.After(c.LastOrderDate) {
			c.LastOrderDate = o.CreatedAt
		}
		if o.CreatedAt.Before(c.FirstOrderDate) {
			c.FirstOrderDate = o.CreatedAt
		}
	}
	return out
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// OrderIDs collects the orders of every customer whose key is selected.
func OrderIDs(list []Info, selected *Selection) []uuid.UUID {
	var ids []uuid.UUID
	for _, c := range list {
		if selected.Has(c.Key) {
			ids = append(ids, c.OrderIDs...)
		}
	}
	return ids
}

type Stats struct {
	TotalCustomers       int    `json:"total_customers"`
	TotalOrders          int    `json:"total_orders"`
	AvgOrdersPerCustomer string `json:"avg_orders_per_customer"`
	RepeatCustomers      int    `json:"repeat_customers"`
}

func ComputeStats(list []Info) Stats {
	s := Stats{TotalCustomers: len(list), AvgOrdersPerCustomer: "0"}
	for _, c := range list {
		s.TotalOrders += c.OrderCount
		if c.OrderCount > 1 {
			s.RepeatCustomers++
		}
	}
	if s.TotalCustomers > 0 {
		s.AvgOrdersPerCustomer = decimal.NewFromInt(int64(s.TotalOrders)).
			Div(decimal.NewFromInt(int64(s.TotalCustomers))).StringFixed(1)
	}
	return s
}
