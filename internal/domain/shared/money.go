package shared

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places money values are stored with
const MoneyScale = 2

// RoundMoney rounds half away from zero to MoneyScale places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
