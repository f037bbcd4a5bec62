package email

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

type ReceiptProduct struct {
	Name      string
	PriceKobo int64
}

type ReceiptData struct {
	Email    string
	OrderID  int64
	Date     time.Time
	Products []ReceiptProduct
	Currency string
}

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": formatMinorUnits,
}).Parse(`<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Thanks for your order!</h2>
  <p>Order <strong>#{{.OrderID}}</strong> &middot; {{.Date.Format "Jan 2, 2006 15:04 MST"}}</p>
  <table cellpadding="6">
    {{range .Products}}
    <tr>
      <td>{{.Name}}</td>
      <td align="right">{{$.Currency}} {{money .PriceKobo}}</td>
    </tr>
    {{end}}
  </table>
  <p>The receipt was sent to {{.Email}}. Your downloads are available in your library.</p>
</body>
</html>`))

func RenderReceipt(data ReceiptData) (string, error) {
	var sb strings.Builder
	if err := receiptTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render receipt template: %w", err)
	}
	return sb.String(), nil
}

func formatMinorUnits(kobo int64) string {
	return fmt.Sprintf("%d.%02d", kobo/100, kobo%100)
}
