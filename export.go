package kasir

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportTimeFormat is the layout of the date column of the CSV export.
const ExportTimeFormat = "2006-01-02 15:04:05"

// ExportCSV writes one row per transaction, oldest first, under the header
// "ID,Date,Total,Items". Dates are written in loc. Items are written as
// "name(qty)" joined by "; ", and that field is always quoted.
func ExportCSV(w io.Writer, ledger *Ledger, loc *time.Location) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("ID,Date,Total,Items\n")
	for _, tx := range ledger.Transactions() {
		fmt.Fprintf(bw, "%s,%s,%s,%s\n",
			csvField(tx.ID),
			tx.Date.In(loc).Format(ExportTimeFormat),
			tx.FinalTotal.Decimal().String(),
			quote(tx.Summary()),
		)
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// csvField quotes s only when needed.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
