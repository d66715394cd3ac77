package money

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidCurrency reports whether code is a well-formed ISO 4217 code.
func ValidCurrency(code string) bool {
	_, err := currency.ParseISO(code)
	return err == nil
}

// Format renders the amount for report labels with locale-aware digit
// grouping, e.g. "USD 1,234.56". Display only; cents stay exact.
func Format(m Money) string {
	p := message.NewPrinter(language.English)
	sign := ""
	a := m.Amount
	if a < 0 {
		sign = "-"
		a = -a
	}
	return p.Sprintf("%s %s%v.%02d", m.Currency, sign, a/100, a%100)
}

// FormatCents renders raw cents in the given currency.
func FormatCents(cents int64, code string) string {
	return Format(Money{Amount: cents, Currency: code})
}
