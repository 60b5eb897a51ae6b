package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatPeso renders an amount as whole pesos with thousands separators,
// e.g. 1234.4 → "₱1,234".
func FormatPeso(v float64) string {
	return "₱" + printer.Sprintf("%d", int64(math.Round(v)))
}
