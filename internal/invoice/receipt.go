package invoice

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/annapurna-pos/api/internal/enum"
)

// receiptTmpl lays out the 80mm thermal receipt. Column widths match the
// printer's 42-character line.
var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"pad": func(width int, s string) string {
		if len([]rune(s)) >= width {
			return string([]rune(s)[:width])
		}
		return s + strings.Repeat(" ", width-len([]rune(s)))
	},
	"rpad": func(width int, s string) string {
		if len([]rune(s)) >= width {
			return s
		}
		return strings.Repeat(" ", width-len([]rune(s))) + s
	},
}).Parse(`{{.Restaurant}}
{{.Header}}
------------------------------------------
Invoice: {{.Number}}
Table:   {{.TableID}}
Date:    {{.Date}}
Served:  #{{.IssuedBy}}
------------------------------------------
{{range .Lines}}{{pad 22 .Name}} {{rpad 4 .Qty}} {{rpad 6 .Price}} {{rpad 7 .Total}}
{{end}}------------------------------------------
{{pad 28 .TotalLabel}}{{rpad 14 .Total}}
`))

type receiptLine struct {
	Name  string
	Qty   string
	Price string
	Total string
}

type receiptData struct {
	Restaurant string
	Header     string
	Number     string
	TableID    int
	Date       string
	IssuedBy   int64
	Lines      []receiptLine
	TotalLabel string
	Total      string
}

// Receipt renders the printable text view of an invoice. All invoice
// fields appear; no bit-exact format is promised beyond that.
func Receipt(inv Invoice, locale, restaurantName string) string {
	header := "Invoice"
	totalLabel := "Total Amount"
	if locale == enum.LocaleMarathi {
		header = "बिल"
		totalLabel = "एकूण रक्कम"
	}

	lines := make([]receiptLine, len(inv.Lines))
	for i, l := range inv.Lines {
		name := l.Name
		if locale == enum.LocaleMarathi && l.LocalName != "" {
			name = l.LocalName
		}
		lines[i] = receiptLine{
			Name:  name,
			Qty:   "x" + strconv.Itoa(l.Quantity),
			Price: l.UnitPrice.StringFixed(2),
			Total: l.LineTotal.StringFixed(2),
		}
	}

	var sb strings.Builder
	// Template over static data cannot fail at execute time.
	_ = receiptTmpl.Execute(&sb, receiptData{
		Restaurant: restaurantName,
		Header:     header,
		Number:     inv.Number,
		TableID:    inv.TableID,
		Date:       inv.GeneratedAt.Format("02/01/2006 15:04"),
		IssuedBy:   inv.IssuedBy,
		Lines:      lines,
		TotalLabel: totalLabel,
		Total:      inv.Total.StringFixed(2),
	})
	return sb.String()
}
