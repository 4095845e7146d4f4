package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const currencyPrefix = "S/ "

var pricePrinter = message.NewPrinter(language.MustParse("es-PE"))

// Amounts go over the wire and into cart slots as plain JSON numbers
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// FormatPrice renders a PEN amount with exactly two fraction digits and
// es-PE grouping, e.g. "S/ 1,250.00".
func FormatPrice(price decimal.Decimal) string {
	amount := price.Round(2).InexactFloat64()
	return currencyPrefix + pricePrinter.Sprint(number.Decimal(amount, number.Scale(2)))
}
