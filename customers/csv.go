package customers

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ray-remotestate/gspot/models"
)

const (
	bom        = "\uFEFF"
	crlf       = "\r\n"
	dateLayout = "Jan 2, 2006"
	listSep    = "; "
)

var ErrNothingToExport = errors.New("no customers to export")

var csvHeader = []string{
	"Customer Name",
	"Contact Number",
	"Total Orders",
	"Total Spent",
	"First Order Date",
	"Last Order Date",
	"Service Types",
	"Delivery Addresses",
}

// ExportFileName is customers_<YYYY-MM-DD>.csv for the UTC date of now.
func ExportFileName(now time.Time) string {
	return "customers_" + now.UTC().Format("2006-01-02") + ".csv"
}

// EscapeField quotes a field containing a comma, quote or newline and
// doubles the quotes inside it.
func EscapeField(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}

// WriteCSV writes the roster as a BOM-prefixed, CRLF-delimited CSV that
// spreadsheet apps open as UTF-8.
func WriteCSV(w io.Writer, list []Info) error {
	if len(list) == 0 {
		return ErrNothingToExport
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(bom)
	bw.WriteString(strings.Join(csvHeader, ","))

	for _, c := range list {
		row := []string{
			EscapeField(c.Name),
			EscapeField(c.ContactNumber),
			strconv.Itoa(c.OrderCount),
			c.TotalSpent.StringFixed(2),
			EscapeField(c.FirstOrderDate.Format(dateLayout)),
			EscapeField(c.LastOrderDate.Format(dateLayout)),
			EscapeField(joinServiceTypes(c.ServiceTypes)),
			EscapeField(strings.Join(c.Addresses, listSep)),
		}
		bw.WriteString(crlf)
		bw.WriteString(strings.Join(row, ","))
	}
	return bw.Flush()
}

func joinServiceTypes(types []models.ServiceType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, listSep)
}
