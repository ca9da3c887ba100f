package notify

import (
	"bytes"
	"text/template"
	"time"

	"rabaislocal/internal/coupon"
)

// Email bodies are plain text. Rendering is kept separate from sending so
// tests can assert on content without a mail transport.

var couponTmpl = template.Must(template.New("coupon").Parse(`Bonjour,

Voici votre coupon pour "{{.OfferTitle}}"{{if .MerchantName}} chez {{.MerchantName}}{{end}}.

Code : {{.Code}}
{{- if .ValidUntil}}
Valide jusqu'au : {{.ValidUntil}}
{{- end}}

Présentez ce code au commerçant pour en profiter.

L'équipe Rabais Local
`))

var redeemedTmpl = template.Must(template.New("redeemed").Parse(`Bonjour,

Votre coupon {{.Code}} pour "{{.OfferTitle}}" vient d'être utilisé.

Si ce n'était pas vous, contactez-nous sans tarder.

L'équipe Rabais Local
`))

type couponMail struct {
	OfferTitle   string
	MerchantName string
	Code         string
	ValidUntil   string
}

func renderCoupon(v coupon.View) (subject, body string, err error) {
	data := couponMail{
		OfferTitle:   v.OfferTitle,
		MerchantName: v.MerchantName,
		Code:         v.UniqueCode,
	}
	if v.ValidUntil != nil {
		data.ValidUntil = v.ValidUntil.Format("2006-01-02")
	}
	var buf bytes.Buffer
	if err := couponTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return "Votre coupon " + v.UniqueCode, buf.String(), nil
}

func renderRedeemed(v coupon.View, at time.Time) (subject, body string, err error) {
	_ = at
	var buf bytes.Buffer
	if err := redeemedTmpl.Execute(&buf, couponMail{OfferTitle: v.OfferTitle, Code: v.UniqueCode}); err != nil {
		return "", "", err
	}
	return "Coupon " + v.UniqueCode + " utilisé", buf.String(), nil
}
