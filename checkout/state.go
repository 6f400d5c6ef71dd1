// Package checkout drives the two-step checkout (details, then payment) and
// turns a session cart into a persisted order.
package checkout

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ray-remotestate/gspot/models"
)

type Step string

const (
	StepDetails Step = "details"
	StepPayment Step = "payment"
)

const (
	PickupCustom     = "custom"
	MaxPartySize     = 20
	DefaultPayment   = "gcash"
	defaultPickup    = "5-10"
	landmarkNoteHead = "Landmark: "
)

// PickupPresets are the ready-in windows offered for pickup orders.
var PickupPresets = []string{"5-10", "15-20", "25-30", PickupCustom}

var (
	ErrWrongStep          = errors.New("action not allowed in the current checkout step")
	ErrNameRequired       = errors.New("customer name is required")
	ErrContactRequired    = errors.New("contact number is required")
	ErrServiceType        = errors.New("service type must be dine-in, pickup or delivery")
	ErrAddressRequired    = errors.New("delivery address is required")
	ErrPickupTimeRequired = errors.New("pickup time is required")
	ErrUnknownPickup      = errors.New("unknown pickup time option")
	ErrPartySizeRequired  = errors.New("party size must be at least 1")
	ErrDineInTimeRequired = errors.New("preferred dine-in time is required")
)

type Details struct {
	CustomerName  string             `json:"customer_name"`
	ContactNumber string             `json:"contact_number"`
	ServiceType   models.ServiceType `json:"service_type"`
	Address       string             `json:"address"`
	Landmark      string             `json:"landmark"`
	PickupTime    string             `json:"pickup_time"`
	CustomTime    string             `json:"custom_time"`
	PartySize     int                `json:"party_size"`
	DineInTime    string             `json:"dine_in_time"`
	Notes         string             `json:"notes"`
}

// DefaultDetails matches a freshly opened checkout form.
func DefaultDetails() Details {
	return Details{
		ServiceType: models.ServiceDineIn,
		PickupTime:  defaultPickup,
		PartySize:   1,
	}
}

func (d *Details) normalize() {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.ContactNumber = strings.TrimSpace(d.ContactNumber)
	d.Address = strings.TrimSpace(d.Address)
	d.Landmark = strings.TrimSpace(d.Landmark)
	d.CustomTime = strings.TrimSpace(d.CustomTime)
	d.DineInTime = strings.TrimSpace(d.DineInTime)
	if d.PartySize > MaxPartySize {
		d.PartySize = MaxPartySize
	}
}

// Validate reports every missing field for the selected service type.
func Validate(d Details) error {
	var result *multierror.Error
	if strings.TrimSpace(d.CustomerName) == "" {
		result = multierror.Append(result, ErrNameRequired)
	}
	if strings.TrimSpace(d.ContactNumber) == "" {
		result = multierror.Append(result, ErrContactRequired)
	}

	switch d.ServiceType {
	case models.ServiceDelivery:
		if strings.TrimSpace(d.Address) == "" {
			result = multierror.Append(result, ErrAddressRequired)
		}
	case models.ServicePickup:
		switch {
		case d.PickupTime == "":
			result = multierror.Append(result, ErrPickupTimeRequired)
		case d.PickupTime == PickupCustom:
			if strings.TrimSpace(d.CustomTime) == "" {
				result = multierror.Append(result, ErrPickupTimeRequired)
			}
		case !isPreset(d.PickupTime):
			result = multierror.Append(result, ErrUnknownPickup)
		}
	case models.ServiceDineIn:
		if d.PartySize <= 0 {
			result = multierror.Append(result, ErrPartySizeRequired)
		}
		if strings.TrimSpace(d.DineInTime) == "" {
			result = multierror.Append(result, ErrDineInTimeRequired)
		}
	default:
		result = multierror.Append(result, ErrServiceType)
	}
	return result.ErrorOrNil()
}

func isPreset(v string) bool {
	for _, p := range PickupPresets {
		if p == v {
			return true
		}
	}
	return false
}

// PickupLabel is the pickup time as written on the order.
func (d Details) PickupLabel() string {
	if d.PickupTime == PickupCustom {
		return d.CustomTime
	}
	return d.PickupTime + " minutes"
}

// MergedNotes folds the delivery landmark into the free-text notes.
func (d Details) MergedNotes() string {
	if d.Landmark == "" {
		return d.Notes
	}
	if d.Notes == "" {
		return landmarkNoteHead + d.Landmark
	}
	return d.Notes + " | " + landmarkNoteHead + d.Landmark
}

// Receipt is a payment screenshot staged on the payment step.
type Receipt struct {
	Name        string
	ContentType string
	Data        []byte
}

// State is the checkout progress of one session.
type State struct {
	Step          Step
	Details       Details
	PaymentMethod string
	ReceiptURL    string
	receipt       *Receipt
}

func NewState() *State {
	return &State{
		Step:          StepDetails,
		Details:       DefaultDetails(),
		PaymentMethod: DefaultPayment,
	}
}

// Valid reports whether the details step may proceed.
func (s *State) Valid() bool {
	return Validate(s.Details) == nil
}

// SetDetails replaces the form while on the details step.
func (s *State) SetDetails(d Details) error {
	if s.Step != StepDetails {
		return ErrWrongStep
	}
	d.normalize()
	s.Details = d
	return nil
}

// Proceed moves from details to payment once the details validate.
func (s *State) Proceed() error {
	if s.Step != StepDetails {
		return ErrWrongStep
	}
	if err := Validate(s.Details); err != nil {
		return err
	}
	s.Step = StepPayment
	return nil
}

// Back returns from payment to details.
func (s *State) Back() error {
	if s.Step != StepPayment {
		return ErrWrongStep
	}
	s.Step = StepDetails
	return nil
}

func (s *State) StageReceipt(r Receipt) error {
	if s.Step != StepPayment {
		return ErrWrongStep
	}
	s.receipt = &r
	s.ReceiptURL = ""
	return nil
}

func (s *State) RemoveReceipt() {
	s.receipt = nil
	s.ReceiptURL = ""
}

// StagedReceipt returns the receipt waiting for upload, if any.
func (s *State) StagedReceipt() *Receipt {
	return s.receipt
}

func (s *State) needsUpload() bool {
	return s.receipt != nil && s.ReceiptURL == ""
}

// Reset starts a new checkout.
func (s *State) Reset() {
	*s = *NewState()
}
