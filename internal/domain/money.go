package domain

import "github.com/shopspring/decimal"

// The backend speaks plain JSON numbers for every monetary field.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
