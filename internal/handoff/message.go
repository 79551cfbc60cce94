package handoff

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/noah-isme/foodcart/internal/money"
)

// Compose renders the order as plain text suitable for a chat message.
func Compose(p Payload) string {
	var b strings.Builder
	b.WriteString("Novo pedido\n\n")
	for _, it := range p.Items {
		fmt.Fprintf(&b, "%dx %s - %s\n", it.Quantity, it.Name, money.FormatBRL(it.LineTotal))
		if it.Subtitle != "" {
			fmt.Fprintf(&b, "   %s\n", it.Subtitle)
		}
		if it.Note != "" {
			fmt.Fprintf(&b, "   Obs: %s\n", it.Note)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", money.FormatBRL(p.Subtotal))
	fmt.Fprintf(&b, "Entrega: %s\n", money.FormatBRL(p.DeliveryFee))
	fmt.Fprintf(&b, "Total: %s", money.FormatBRL(p.Total))
	if p.Note != "" {
		fmt.Fprintf(&b, "\n\nObservações: %s", p.Note)
	}
	return b.String()
}

// WhatsAppLink builds a click-to-chat link. Non-digits are stripped from phone; an empty
// phone yields a link that lets the user pick the contact.
func WhatsAppLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	link := "https://wa.me/" + digits
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}
