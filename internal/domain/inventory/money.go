package inventory

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToCents convierte un monto decimal a centavos enteros (redondeo half away from zero).
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents convierte centavos a decimal con dos cifras para presentación.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
