package app

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// tokenPattern matches {{ token }} placeholders in user-supplied reminder
// and message templates. Tokens are matched case-insensitively.
var tokenPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// RenderTokens substitutes {{token}} placeholders from context. Unknown
// tokens render as the empty string, matching how landlords expect a
// half-filled template to degrade.
func RenderTokens(tpl string, context map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		token := strings.ToLower(strings.TrimSpace(tokenPattern.FindStringSubmatch(match)[1]))
		return context[token]
	})
}

// DefaultReminderTemplate is the body used when a reminder batch does not
// supply its own message.
func DefaultReminderTemplate() string {
	return "Bonjour {{locataire}},\n\nCeci est un rappel concernant votre loyer de {{montant}} pour {{logement}}, " +
		"dû avant le {{date}}.\nMerci de procéder au paiement dès que possible.\n"
}

// FormatCurrency renders an amount in the display currency, grouping
// thousands with spaces: 1234567 → "1 234 567 F CFA".
func FormatCurrency(amount float64) string {
	digits := fmt.Sprintf("%.0f", amount)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	return out + " F CFA"
}

// textToHTML escapes plain text and turns newlines into <br> so a text body
// can double as a minimal HTML alternative.
func textToHTML(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>")) //nolint:gosec // input escaped above
}

type reminderEmailData struct {
	Name     string
	BodyHTML template.HTML
	Amount   string
	PayURL   string
}

type receiptEmailData struct {
	Name          string
	PropertyName  string
	Amount        string
	PaymentMonths int
	DueDate       string
	PaidDate      string
	CTAURL        string
	CTALabel      string
}

type messageEmailData struct {
	Name     string
	BodyHTML template.HTML
	CTAURL   string
}

func renderEmailTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
