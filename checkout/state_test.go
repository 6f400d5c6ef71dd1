package checkout

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/ray-remotestate/gspot/models"
)

func validBase() Details {
	d := DefaultDetails()
	d.CustomerName = "Juan"
	d.ContactNumber = "09171234567"
	return d
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Details)
		want   error
	}{
		{"missing name", func(d *Details) { d.CustomerName = "  " }, ErrNameRequired},
		{"missing contact", func(d *Details) { d.ContactNumber = "" }, ErrContactRequired},
		{"delivery without address", func(d *Details) { d.ServiceType = models.ServiceDelivery }, ErrAddressRequired},
		{"delivery with address", func(d *Details) {
			d.ServiceType = models.ServiceDelivery
			d.Address = "12 Mabini St"
		}, nil},
		{"pickup preset", func(d *Details) { d.ServiceType = models.ServicePickup }, nil},
		{"pickup custom without time", func(d *Details) {
			d.ServiceType = models.ServicePickup
			d.PickupTime = PickupCustom
		}, ErrPickupTimeRequired},
		{"pickup custom with time", func(d *Details) {
			d.ServiceType = models.ServicePickup
			d.PickupTime = PickupCustom
			d.CustomTime = "2:30 PM"
		}, nil},
		{"pickup unknown preset", func(d *Details) {
			d.ServiceType = models.ServicePickup
			d.PickupTime = "40-50"
		}, ErrUnknownPickup},
		{"dine-in without time", func(d *Details) {}, ErrDineInTimeRequired},
		{"dine-in without party", func(d *Details) {
			d.PartySize = 0
			d.DineInTime = "2025-03-01T18:30"
		}, ErrPartySizeRequired},
		{"dine-in complete", func(d *Details) { d.DineInTime = "2025-03-01T18:30" }, nil},
		{"bad service type", func(d *Details) { d.ServiceType = "drive-thru" }, ErrServiceType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validBase()
			tt.mutate(&d)
			err := Validate(d)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	d := DefaultDetails()
	d.ServiceType = models.ServiceDelivery

	var merr *multierror.Error
	if !errors.As(Validate(d), &merr) {
		t.Fatalf("expected a multierror")
	}
	if len(merr.Errors) != 3 {
		t.Fatalf("problems = %v, want name, contact and address", merr.Errors)
	}
}

func TestStepTransitions(t *testing.T) {
	st := NewState()
	if st.Step != StepDetails || st.Valid() {
		t.Fatalf("new checkout should start invalid on details")
	}

	if err := st.Proceed(); err == nil {
		t.Fatalf("proceed with empty form should fail")
	}
	if err := st.Back(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("back from details: %v", err)
	}

	d := validBase()
	d.DineInTime = "2025-03-01T18:30"
	d.PartySize = 50
	if err := st.SetDetails(d); err != nil {
		t.Fatalf("set details: %v", err)
	}
	if st.Details.PartySize != MaxPartySize {
		t.Fatalf("party size = %d, want clamp to %d", st.Details.PartySize, MaxPartySize)
	}
	if err := st.Proceed(); err != nil {
		t.Fatalf("proceed: %v", err)
	}
	if st.Step != StepPayment {
		t.Fatalf("step = %s", st.Step)
	}
	if err := st.SetDetails(d); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("details must be locked on payment: %v", err)
	}
	if err := st.Back(); err != nil || st.Step != StepDetails {
		t.Fatalf("back: %v, step %s", err, st.Step)
	}
}

func TestMergedNotesAndPickupLabel(t *testing.T) {
	d := Details{Notes: "Extra sauce", Landmark: "Near church"}
	if got := d.MergedNotes(); got != "Extra sauce | Landmark: Near church" {
		t.Fatalf("got %q", got)
	}
	d.Notes = ""
	if got := d.MergedNotes(); got != "Landmark: Near church" {
		t.Fatalf("got %q", got)
	}
	d.Landmark = ""
	if got := d.MergedNotes(); got != "" {
		t.Fatalf("got %q", got)
	}

	if got := (Details{PickupTime: "15-20"}).PickupLabel(); got != "15-20 minutes" {
		t.Fatalf("got %q", got)
	}
	if got := (Details{PickupTime: PickupCustom, CustomTime: "1 hour"}).PickupLabel(); got != "1 hour" {
		t.Fatalf("got %q", got)
	}
}
