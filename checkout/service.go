package checkout

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/cart"
	"github.com/ray-remotestate/gspot/events"
	"github.com/ray-remotestate/gspot/media"
	"github.com/ray-remotestate/gspot/messenger"
	"github.com/ray-remotestate/gspot/models"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrReceiptsDisabled     = errors.New("receipt uploads are not configured")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// OrderCreator persists an order and its items, filling in ID, Status and
// CreatedAt.
type OrderCreator interface {
	CreateOrder(ctx context.Context, o *models.Order) error
}

type PaymentMethods interface {
	GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
}

type ReceiptUploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// UploadError aborts placement when the receipt could not be stored.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return e.Err.Error() }
func (e *UploadError) Unwrap() error { return e.Err }

// Notice is the message shown to the customer on the payment step.
func (e *UploadError) Notice() string {
	return fmt.Sprintf("Upload failed: %s. Please try again or continue without receipt.", e.Err.Error())
}

// PlaceError means the order store refused the order.
type PlaceError struct {
	Notice string
	Err    error
}

func (e *PlaceError) Error() string { return e.Err.Error() }
func (e *PlaceError) Unwrap() error { return e.Err }

type Result struct {
	Order       *models.Order `json:"order"`
	Summary     string        `json:"summary"`
	RedirectURL string        `json:"redirect_url"`
}

type Service struct {
	Orders   OrderCreator
	Payments PaymentMethods
	// Receipts is nil when no image host is configured.
	Receipts ReceiptUploader
	Events   events.Publisher
	PageID   string
}

// SelectPaymentMethod records the customer's choice on the payment step.
func (s *Service) SelectPaymentMethod(ctx context.Context, st *State, id string) (*models.PaymentMethod, error) {
	if st.Step != StepPayment {
		return nil, ErrWrongStep
	}
	pm, err := s.Payments.GetPaymentMethod(ctx, id)
	if errors.Is(err, models.ErrPaymentMethodNotFound) {
		return nil, ErrUnknownPaymentMethod
	}
	if err != nil {
		return nil, err
	}
	if pm == nil || !pm.Active {
		return nil, ErrUnknownPaymentMethod
	}
	st.PaymentMethod = pm.ID
	return pm, nil
}

// StageReceipt keeps a receipt until the order is placed.
func (s *Service) StageReceipt(st *State, r Receipt) error {
	if s.Receipts == nil {
		return ErrReceiptsDisabled
	}
	return st.StageReceipt(r)
}

// PlaceOrder uploads a staged receipt, persists the order and returns the
// messenger hand-off. On success the cart is emptied and the checkout reset.
func (s *Service) PlaceOrder(ctx context.Context, st *State, c *cart.Cart) (*Result, error) {
	if st.Step != StepPayment {
		return nil, ErrWrongStep
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := Validate(st.Details); err != nil {
		return nil, err
	}

	if st.needsUpload() {
		url, err := s.uploadReceipt(ctx, st.receipt)
		if err != nil {
			return nil, &UploadError{Err: err}
		}
		st.ReceiptURL = url
	}

	order := st.buildOrder(c)
	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		logrus.WithError(err).WithField("contact", order.ContactNumber).Warn("order not placed")
		return nil, &PlaceError{Notice: NoticeFor(err), Err: err}
	}

	summary := messenger.Summary(st.summaryInput(c, s.paymentName(ctx, st.PaymentMethod)))
	res := &Result{
		Order:       order,
		Summary:     summary,
		RedirectURL: messenger.DeepLink(s.PageID, summary),
	}

	if s.Events != nil {
		if err := s.Events.Publish(ctx, events.NewOrderEvent(events.OrderPlaced, order)); err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event")
		}
	}

	c.Clear()
	st.Reset()
	return res, nil
}

func (s *Service) uploadReceipt(ctx context.Context, r *Receipt) (string, error) {
	if s.Receipts == nil {
		return "", ErrReceiptsDisabled
	}
	compressed, err := media.Compress(bytes.NewReader(r.Data), media.DefaultMaxEdge, media.DefaultQuality)
	if err != nil {
		return "", err
	}
	return s.Receipts.Upload(ctx, r.Name, compressed)
}

func (s *Service) paymentName(ctx context.Context, id string) string {
	if s.Payments == nil {
		return id
	}
	pm, err := s.Payments.GetPaymentMethod(ctx, id)
	if err != nil || pm == nil {
		return id
	}
	return pm.Name
}

func (st *State) buildOrder(c *cart.Cart) *models.Order {
	d := st.Details
	o := &models.Order{
		CustomerName:  d.CustomerName,
		ContactNumber: d.ContactNumber,
		ServiceType:   d.ServiceType,
		PaymentMethod: st.PaymentMethod,
		Notes:         d.MergedNotes(),
		ReceiptURL:    st.ReceiptURL,
		Status:        models.StatusPending,
	}
	switch d.ServiceType {
	case models.ServiceDelivery:
		o.Address = d.Address
	case models.ServicePickup:
		o.PickupTime = d.PickupLabel()
	case models.ServiceDineIn:
		o.PartySize = d.PartySize
		o.DineInTime = d.DineInTime
	}

	for _, it := range c.Items() {
		item := models.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  it.TotalPrice,
			Quantity:   it.Quantity,
			Subtotal:   it.LineTotal(),
		}
		if it.Variation != nil {
			item.Variation = &models.ItemVariation{Name: it.Variation.Name, PriceDelta: it.Variation.PriceDelta}
		}
		for _, a := range it.AddOns {
			item.AddOns = append(item.AddOns, models.ItemAddOn{Name: a.Name, Price: a.Price, Quantity: a.Quantity})
		}
		o.Items = append(o.Items, item)
	}
	o.Total = o.ItemsTotal()
	return o
}

func (st *State) summaryInput(c *cart.Cart, paymentName string) messenger.Order {
	d := st.Details
	in := messenger.Order{
		CustomerName:  d.CustomerName,
		ContactNumber: d.ContactNumber,
		ServiceType:   d.ServiceType,
		Address:       d.Address,
		Landmark:      d.Landmark,
		PartySize:     d.PartySize,
		DineInTime:    d.DineInTime,
		Total:         c.TotalPrice(),
		PaymentMethod: paymentName,
		ReceiptURL:    st.ReceiptURL,
		Notes:         d.Notes,
	}
	if d.ServiceType == models.ServicePickup {
		in.PickupTime = d.PickupLabel()
	}
	for _, it := range c.Items() {
		l := messenger.Line{Name: it.Name, Quantity: it.Quantity, LineTotal: it.LineTotal()}
		if it.Variation != nil {
			l.Variation = it.Variation.Name
		}
		for _, a := range it.AddOns {
			l.AddOns = append(l.AddOns, models.ItemAddOn{Name: a.Name, Price: a.Price, Quantity: a.Quantity})
		}
		in.Lines = append(in.Lines, l)
	}
	return in
}
