package model

import "github.com/shopspring/decimal"

// Level is one resting order (when ID is set) or one aggregated price level.
type Level struct {
	Price    decimal.NullDecimal
	Quantity decimal.NullDecimal
	ID       string
}

func NewLevel(price, quantity decimal.Decimal, id string) Level {
	return Level{
		Price:    decimal.NullDecimal{Decimal: price, Valid: true},
		Quantity: decimal.NullDecimal{Decimal: quantity, Valid: true},
		ID:       id,
	}
}

// IsRemoval reports whether storing the level means deleting it.
func (l Level) IsRemoval() bool {
	return l.Quantity.Valid && l.Quantity.Decimal.IsZero()
}

func (l Level) Equal(o Level) bool {
	return l.ID == o.ID && nullEqual(l.Price, o.Price) && nullEqual(l.Quantity, o.Quantity)
}

// Debug returns a human readable format string
func (l Level) Debug() string {
	buf := make([]byte, 0, 48)
	buf = append(buf, '(')
	buf = appendNull(buf, l.Price)
	buf = append(buf, ',')
	buf = appendNull(buf, l.Quantity)
	if len(l.ID) != 0 {
		buf = append(buf, ',')
		buf = append(buf, l.ID...)
	}
	buf = append(buf, ')')
	return string(buf)
}
