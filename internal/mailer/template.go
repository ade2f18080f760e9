package mailer

import (
	"bytes"
	"html/template"
)

const (
	brand       = "VOSTOK TRADE COMPANY"
	subject     = brand + " price list"
	attachName  = "price-list.xlsx"
	messageHost = "vostok-trade.local"
)

var priceListTmpl = template.Must(template.New("price-list").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: #1f2937; color: white; padding: 20px; text-align: center; }
.content { padding: 20px; background-color: #f9f9f9; }
.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>{{.Brand}}</h1></div>
<div class="content">
<h2>Product price list</h2>
<p>Dear customer,</p>
<p>Thank you for your interest in our products. The current price list is attached to this email.</p>
<p>If you have any questions, please contact us using the details on our website.</p>
<p>Best regards,<br>The {{.Brand}} team</p>
</div>
<div class="footer"><p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p></div>
</div>
</body>
</html>
`))

func renderBody(year int) (string, error) {
	var buf bytes.Buffer
	err := priceListTmpl.Execute(&buf, struct {
		Brand string
		Year  int
	}{brand, year})
	return buf.String(), err
}
