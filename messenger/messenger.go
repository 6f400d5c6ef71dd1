// Package messenger builds the order hand-off text and the m.me link that
// opens a conversation with the restaurant page prefilled with it.
package messenger

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/gspot/models"
)

const (
	baseURL       = "https://m.me/"
	DefaultPageID = "GSpotHangout2025"
	storeName     = "G'$pot Hang-out"

	// dineInLayout is what a datetime-local form input submits.
	dineInLayout = "2006-01-02T15:04"
)

type Line struct {
	Name      string
	Variation string
	AddOns    []models.ItemAddOn
	Quantity  int
	LineTotal decimal.Decimal
}

type Order struct {
	CustomerName  string
	ContactNumber string
	ServiceType   models.ServiceType
	Address       string
	Landmark      string
	PickupTime    string
	PartySize     int
	DineInTime    string
	Lines         []Line
	Total         decimal.Decimal
	PaymentMethod string
	ReceiptURL    string
	Notes         string
}

// Summary renders the message a customer sends the page to confirm an order.
func Summary(o Order) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("🛒 %s ORDER", storeName)
	line("")
	line("👤 Customer: %s", o.CustomerName)
	line("📞 Contact: %s", o.ContactNumber)
	line("📍 Service: %s", o.ServiceType.Label())

	switch o.ServiceType {
	case models.ServiceDelivery:
		line("🏠 Address: %s", o.Address)
		if o.Landmark != "" {
			line("🗺️ Landmark: %s", o.Landmark)
		}
	case models.ServicePickup:
		line("⏰ Pickup Time: %s", o.PickupTime)
	case models.ServiceDineIn:
		plural := "s"
		if o.PartySize == 1 {
			plural = ""
		}
		line("👥 Party Size: %d person%s", o.PartySize, plural)
		line("🕐 Preferred Time: %s", FormatDineInTime(o.DineInTime))
	}

	line("")
	line("📋 ORDER DETAILS:")
	for _, l := range o.Lines {
		line("%s", itemLine(l))
	}
	line("")
	line("💰 TOTAL: ₱%s", o.Total.String())
	if o.ServiceType == models.ServiceDelivery {
		line("🛵 DELIVERY FEE:")
	}
	line("")
	line("💳 Payment: %s", o.PaymentMethod)
	if o.ReceiptURL != "" {
		line("📸 Payment Receipt: %s", o.ReceiptURL)
	} else {
		line("📸 Payment Screenshot: Please attach your payment receipt screenshot")
	}
	if o.Notes != "" {
		line("")
		line("📝 Notes: %s", o.Notes)
	}
	line("")
	b.WriteString("Please confirm this order to proceed. Thank you for choosing " + storeName + "! 🥟")

	return strings.TrimSpace(b.String())
}

func itemLine(l Line) string {
	s := "• " + l.Name
	if l.Variation != "" {
		s += " (" + l.Variation + ")"
	}
	if len(l.AddOns) > 0 {
		names := make([]string, 0, len(l.AddOns))
		for _, a := range l.AddOns {
			if a.Quantity > 1 {
				names = append(names, fmt.Sprintf("%s x%d", a.Name, a.Quantity))
			} else {
				names = append(names, a.Name)
			}
		}
		s += " + " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s x%d - ₱%s", s, l.Quantity, l.LineTotal.String())
}

// FormatDineInTime renders a datetime-local value as
// "Monday, January 2, 2006, 03:04 PM". Unparseable input is returned as is.
func FormatDineInTime(v string) string {
	t, err := time.Parse(dineInLayout, v)
	if err != nil {
		return v
	}
	return t.Format("Monday, January 2, 2006, 03:04 PM")
}

// DeepLink returns https://m.me/<pageID>?text=<text> with the text encoded
// the way encodeURIComponent does it.
func DeepLink(pageID, text string) string {
	if pageID == "" {
		pageID = DefaultPageID
	}
	return baseURL + url.PathEscape(pageID) + "?text=" + EncodeComponent(text)
}

// EncodeComponent percent-encodes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func EncodeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
