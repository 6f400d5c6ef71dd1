package checkout

import (
	"errors"

	"github.com/ray-remotestate/gspot/models"
)

const (
	NoticeRateLimited = "Too many orders: Please wait 1 minute before placing another order."
	NoticeUnavailable = "Some items in your cart are no longer available. Please review your cart and try again."
	NoticeGeneric     = "We couldn't place your order right now. Please try again."
)

// NoticeFor maps an order store error to the message shown to the customer.
// Stock errors are shown as reported so the customer sees which item ran out.
func NoticeFor(err error) string {
	var stock *models.StockError
	switch {
	case errors.As(err, &stock):
		return stock.Error()
	case errors.Is(err, models.ErrInsufficientStock):
		return err.Error()
	case errors.Is(err, models.ErrRateLimited):
		return NoticeRateLimited
	case errors.Is(err, models.ErrMissingIdentifiers):
		return NoticeUnavailable
	default:
		return NoticeGeneric
	}
}
