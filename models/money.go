package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount held in minor units, e.g. 2500 NGN as "25.00 NGN".
func FormatAmount(minor int64, currency string) string {
	return decimal.New(minor, -2).StringFixed(2) + " " + strings.ToUpper(currency)
}
