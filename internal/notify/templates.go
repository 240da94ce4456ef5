package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var templates = template.Must(template.New("email").Funcs(template.FuncMap{
	"status": statusLabel,
}).Parse(`
{{define "layout_start"}}<!doctype html><html><body style="font-family:Arial,sans-serif;color:#222">{{end}}
{{define "layout_end"}}<p style="color:#888;font-size:12px">Packklite</p></body></html>{{end}}

{{define "lines"}}<table cellpadding="4" style="border-collapse:collapse">
<tr><th align="left">Item</th><th align="left">Size</th><th align="right">Qty</th><th align="right">Unit</th><th align="right">Total</th></tr>
{{range .Lines}}<tr><td>{{.ProductName}}</td><td>{{.SizeLabel}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.UnitPrice}}</td><td align="right">{{.LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Subtotal}}<br>Discount: {{.Discount}}<br>Delivery: {{.DeliveryCharge}}<br><strong>Total: {{.Total}}</strong></p>{{end}}

{{define "order_created_customer"}}{{template "layout_start"}}
<h2>Thank you, {{.ContactName}}</h2>
<p>We received your order <strong>{{.OrderNumber}}</strong>. We will confirm it shortly.</p>
{{template "lines" .}}
{{template "layout_end"}}{{end}}

{{define "order_created_admin"}}{{template "layout_start"}}
<h2>New order {{.OrderNumber}}</h2>
<p>{{.ContactName}} &lt;{{.ContactEmail}}&gt;{{if .Company}} ({{.Company}}){{end}}</p>
{{template "lines" .}}
{{template "layout_end"}}{{end}}

{{define "order_status_customer"}}{{template "layout_start"}}
<h2>Order {{.OrderNumber}}</h2>
<p>Hi {{.ContactName}}, your order status changed from {{status .From}} to <strong>{{status .To}}</strong>.</p>
{{template "layout_end"}}{{end}}

{{define "quote_created_customer"}}{{template "layout_start"}}
<h2>Thanks, {{.Name}}</h2>
<p>Your quote request <strong>{{.Reference}}</strong> for {{.ProductInterest}} is with our team. We usually reply within one business day.</p>
{{template "layout_end"}}{{end}}

{{define "quote_created_admin"}}{{template "layout_start"}}
<h2>Quote request {{.Reference}}</h2>
<p>{{.Name}} &lt;{{.Email}}&gt;{{if .Phone}} {{.Phone}}{{end}}{{if .Company}} ({{.Company}}){{end}}</p>
<p>Product: {{.ProductInterest}}{{if .Quantity}}, quantity {{.Quantity}}{{end}}</p>
<blockquote>{{.Message}}</blockquote>
{{template "layout_end"}}{{end}}
`))

func renderHTML(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
