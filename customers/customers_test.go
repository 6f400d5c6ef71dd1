package customers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/gspot/models"
)

var day = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func order(name, phone string, total int64, svc models.ServiceType, addr string, at time.Time) models.Order {
	return models.Order{
		ID:            uuid.New(),
		CustomerName:  name,
		ContactNumber: phone,
		ServiceType:   svc,
		Address:       addr,
		Total:         decimal.NewFromInt(total),
		CreatedAt:     at,
	}
}

func sample() []models.Order {
	return []models.Order{
		order("Juan", "0917", 150, models.ServiceDelivery, "12 Mabini St, Brgy. 5", day),
		order("juan", "0917", 90, models.ServicePickup, "", day.Add(-48*time.Hour)),
		order("JUAN", "0917", 60, models.ServiceDelivery, "12 Mabini St, Brgy. 5", day.Add(24*time.Hour)),
		order("Ana", "0918", 500, models.ServiceDineIn, "", day.Add(-24*time.Hour)),
		order("Bea", "0919", 75, models.ServiceDelivery, "Rizal Ave", day.Add(-72*time.Hour)),
	}
}

func TestAggregateGroupsByLowercaseNameAndPhone(t *testing.T) {
	orders := sample()
	list := Aggregate(orders)
	if len(list) != 3 {
		t.Fatalf("customers = %d, want 3", len(list))
	}

	juan := list[0]
	if juan.Key != "juan-0917" || juan.Name != "Juan" {
		t.Fatalf("first customer = %+v", juan)
	}
	if juan.OrderCount != 3 || !juan.TotalSpent.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("count=%d spent=%s", juan.OrderCount, juan.TotalSpent)
	}
	if len(juan.Addresses) != 1 {
		t.Fatalf("addresses not deduplicated: %v", juan.Addresses)
	}
	if len(juan.ServiceTypes) != 2 {
		t.Fatalf("service types = %v", juan.ServiceTypes)
	}
	if !juan.FirstOrderDate.Equal(day.Add(-48*time.Hour)) || !juan.LastOrderDate.Equal(day.Add(24*time.Hour)) {
		t.Fatalf("first=%s last=%s", juan.FirstOrderDate, juan.LastOrderDate)
	}
	if len(juan.OrderIDs) != 3 || juan.OrderIDs[1] != orders[1].ID {
		t.Fatalf("order ids = %v", juan.OrderIDs)
	}
}

func TestTwoOrdersMakeOneCustomer(t *testing.T) {
	list := Aggregate([]models.Order{
		order("Ana Cruz", "0918", 120, models.ServicePickup, "", day),
		order("ana cruz", "0918", 80, models.ServicePickup, "", day),
	})
	if len(list) != 1 || list[0].OrderCount != 2 || !list[0].TotalSpent.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("got %+v", list)
	}
}

func TestFilter(t *testing.T) {
	list := Aggregate(sample())
	tests := []struct {
		q    string
		want int
	}{
		{"", 3},
		{"ANA", 1},
		{"0919", 1},
		{"mabini", 1},
		{"09", 3},
		{"nobody", 0},
	}
	for _, tt := range tests {
		if got := len(Filter(list, tt.q)); got != tt.want {
			t.Errorf("Filter(%q) = %d, want %d", tt.q, got, tt.want)
		}
	}
}

func names(list []Info) string {
	var out []string
	for _, c := range list {
		out = append(out, c.Name)
	}
	return strings.Join(out, ",")
}

func TestSort(t *testing.T) {
	list := Aggregate(sample())
	tests := []struct {
		state SortState
		want  string
	}{
		{DefaultSort(), "Juan,Ana,Bea"},
		{SortState{SortByName, Asc}, "Ana,Bea,Juan"},
		{SortState{SortByName, Desc}, "Juan,Bea,Ana"},
		{SortState{SortByOrderCount, Desc}, "Juan,Ana,Bea"},
		{SortState{SortByTotalSpent, Asc}, "Bea,Juan,Ana"},
		{SortState{SortByTotalSpent, Desc}, "Ana,Juan,Bea"},
		{SortState{SortByLastOrderDate, Asc}, "Bea,Ana,Juan"},
	}
	for _, tt := range tests {
		if got := names(Sort(list, tt.state)); got != tt.want {
			t.Errorf("Sort(%v) = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestTotalSpentDirectionsAreReversed(t *testing.T) {
	list := Aggregate(sample())
	asc := Sort(list, SortState{SortByTotalSpent, Asc})
	desc := Sort(list, SortState{SortByTotalSpent, Desc})
	for i := range asc {
		if asc[i].Key != desc[len(desc)-1-i].Key {
			t.Fatalf("asc %s vs desc %s", names(asc), names(desc))
		}
	}
}

func TestToggleAndParseSort(t *testing.T) {
	s := DefaultSort()
	s = s.Toggle(SortByLastOrderDate)
	if s.Dir != Asc {
		t.Fatalf("repeat key should flip to asc: %+v", s)
	}
	s = s.Toggle(SortByName)
	if s != (SortState{SortByName, Desc}) {
		t.Fatalf("new key should start desc: %+v", s)
	}

	if got := ParseSort("bogus", "sideways"); got != DefaultSort() {
		t.Fatalf("ParseSort fallback = %+v", got)
	}
	if got := ParseSort("totalSpent", "ASC"); got != (SortState{SortByTotalSpent, Asc}) {
		t.Fatalf("ParseSort = %+v", got)
	}
}

func TestSelectionAndOrderIDs(t *testing.T) {
	list := Aggregate(sample())
	sel := NewSelection()
	sel.Toggle("juan-0917")
	sel.Toggle("bea-0919")
	sel.Toggle("bea-0919")

	ids := OrderIDs(list, sel)
	if len(ids) != 3 {
		t.Fatalf("ids = %d, want 3", len(ids))
	}

	sel.ToggleAll(list)
	if sel.Len() != 3 {
		t.Fatalf("select all = %d", sel.Len())
	}
	sel.ToggleAll(list)
	if sel.Len() != 0 {
		t.Fatalf("toggle all again should clear, got %d", sel.Len())
	}
}

func TestStats(t *testing.T) {
	s := ComputeStats(Aggregate(sample()))
	want := Stats{TotalCustomers: 3, TotalOrders: 5, AvgOrdersPerCustomer: "1.7", RepeatCustomers: 1}
	if s != want {
		t.Fatalf("stats = %+v, want %+v", s, want)
	}
	if got := ComputeStats(nil).AvgOrdersPerCustomer; got != "0" {
		t.Fatalf("empty avg = %s", got)
	}
}

func TestEscapeField(t *testing.T) {
	tests := map[string]string{
		"plain":              "plain",
		"12 Mabini St, Brgy": `"12 Mabini St, Brgy"`,
		`the "corner" house`: `"the ""corner"" house"`,
		"line\nbreak":        "\"line\nbreak\"",
	}
	for in, want := range tests {
		if got := EscapeField(in); got != want {
			t.Errorf("EscapeField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	list := Aggregate([]models.Order{
		order("Juan", "0917", 150, models.ServiceDelivery, `Unit 3, "Blue" Bldg`, day),
		order("Juan", "0917", 60, models.ServicePickup, "", day.Add(24*time.Hour)),
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, list); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "\uFEFFCustomer Name,Contact Number,Total Orders,Total Spent,") {
		t.Fatalf("missing BOM or header: %q", out)
	}
	lines := strings.Split(out, "\r\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d: %q", len(lines), out)
	}
	want := `Juan,0917,2,210.00,"Mar 1, 2025","Mar 2, 2025",delivery; pickup,"Unit 3, ""Blue"" Bldg"`
	if lines[1] != want {
		t.Fatalf("row = %s\nwant  %s", lines[1], want)
	}

	if err := WriteCSV(&buf, nil); err != ErrNothingToExport {
		t.Fatalf("empty export: %v", err)
	}
}

func TestExportFileName(t *testing.T) {
	if got := ExportFileName(day); got != "customers_2025-03-01.csv" {
		t.Fatalf("got %s", got)
	}
}
