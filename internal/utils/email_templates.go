package utils

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	"mobilenest_back_end/internal/models"
)

// FormatRupiah formate un montant entier : 130000 -> "Rp 130.000".
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return sign + "Rp " + b.String()
}

var emailFuncs = template.FuncMap{"rupiah": FormatRupiah}

const emailLayout = `<!DOCTYPE html>
<html lang="id">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f5f5f5;">
    <div style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 12px; overflow: hidden;">
        <div style="background-color: {{.Color}}; padding: 30px; text-align: center; color: #ffffff;">
            <h1 style="margin: 0; font-size: 24px;">{{.Icon}} MobileNest</h1>
            <p style="margin: 10px 0 0 0; font-size: 16px;">{{.Title}}</p>
        </div>
        <div style="padding: 30px; color: #333333; font-size: 15px; line-height: 1.6;">
            <p>{{.Message}}</p>
            {{with .Order}}
            <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
                <tr><td style="padding: 6px 0; color: #666666;">No. Transaksi</td><td style="text-align: right;"><strong>{{.OrderNumber}}</strong></td></tr>
                <tr><td style="padding: 6px 0; color: #666666;">Status</td><td style="text-align: right;">{{.Status}}</td></tr>
            </table>
            {{if .Items}}
            <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
                <thead>
                    <tr style="background-color: #f0f0f0;">
                        <th style="padding: 8px; text-align: left;">Produk</th>
                        <th style="padding: 8px; text-align: center;">Jumlah</th>
                        <th style="padding: 8px; text-align: right;">Subtotal</th>
                    </tr>
                </thead>
                <tbody>
                {{range .Items}}
                    <tr>
                        <td style="padding: 8px;">{{.ProductName}}</td>
                        <td style="padding: 8px; text-align: center;">{{.Quantity}}</td>
                        <td style="padding: 8px; text-align: right;">{{rupiah .Subtotal}}</td>
                    </tr>
                {{end}}
                </tbody>
            </table>
            {{end}}
            <table style="width: 100%; border-collapse: collapse;">
                <tr><td style="padding: 4px 0;">Subtotal</td><td style="text-align: right;">{{rupiah .Subtotal}}</td></tr>
                {{if .Discount}}<tr><td style="padding: 4px 0;">Diskon</td><td style="text-align: right;">-{{rupiah .Discount}}</td></tr>{{end}}
                <tr><td style="padding: 4px 0;">Ongkir</td><td style="text-align: right;">{{rupiah .ShippingCost}}</td></tr>
                <tr><td style="padding: 8px 0; font-weight: bold;">Total</td><td style="text-align: right; font-weight: bold;">{{rupiah .Total}}</td></tr>
            </table>
            {{end}}
        </div>
        <div style="padding: 20px; background-color: #f8f9fa; text-align: center; color: #999999; font-size: 12px;">
            Email ini dikirim otomatis, mohon tidak membalas.
        </div>
    </div>
</body>
</html>`

var emailTemplate = template.Must(template.New("email").Funcs(emailFuncs).Parse(emailLayout))

type emailData struct {
	Title   string
	Icon    string
	Color   string
	Message string
	Order   models.Transaction
}

func renderEmail(data emailData) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPaymentReceivedHTML génère le HTML de confirmation de réception du paiement.
func RenderPaymentReceivedHTML(order models.Transaction) (string, error) {
	return renderEmail(emailData{
		Title:   "Bukti pembayaran diterima",
		Icon:    "💳",
		Color:   "#2563eb",
		Message: "Terima kasih! Bukti pembayaran Anda sudah kami terima dan sedang menunggu verifikasi oleh tim kami.",
		Order:   order,
	})
}

// RenderOrderStatusHTML génère le HTML de notification de changement de statut.
func RenderOrderStatusHTML(order models.Transaction) (string, error) {
	return renderEmail(emailData{
		Title:   "Status pesanan diperbarui",
		Icon:    StatusEmailIcon(order.Status),
		Color:   StatusEmailColor(order.Status),
		Message: StatusEmailMessage(order.Status),
		Order:   order,
	})
}
