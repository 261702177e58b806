package model

import "github.com/shopspring/decimal"

// Trade is a public fill. Fields the venue does not disclose stay empty:
// Price is null when only base and counter volumes are known, and Timestamp
// is zero when the fill carries no execution time.
type Trade struct {
	Symbol       string
	ID           string
	Order        string
	MakerOrderID string
	TakerOrderID string
	Price        decimal.NullDecimal
	Amount       decimal.NullDecimal
	Cost         decimal.NullDecimal
	Timestamp    int64
	Datetime     string
}

// ImpliedPrice derives cost/amount when both volumes are known and amount is
// not zero.
func (t Trade) ImpliedPrice() (decimal.Decimal, bool) {
	if t.Price.Valid {
		return t.Price.Decimal, true
	}

	if !t.Amount.Valid || !t.Cost.Valid || t.Amount.Decimal.IsZero() {
		return decimal.Zero, false
	}

	return t.Cost.Decimal.Div(t.Amount.Decimal), true
}
