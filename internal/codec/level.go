package codec

import (
	"lunofeed/internal/model"

	"github.com/shopspring/decimal"
)

// Level is the wire form of a model.Level. Unknown numbers are null.
type Level struct {
	Price    *string `json:"price"`
	Quantity *string `json:"quantity"`
	ID       string  `json:"id,omitempty"`
}

func number(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func parseNumber(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return model.ParseDecimal(*s)
}

func NewLevel(l model.Level) Level {
	return Level{
		Price:    number(l.Price),
		Quantity: number(l.Quantity),
		ID:       l.ID,
	}
}

func (l Level) Model() model.Level {
	return model.Level{
		Price:    parseNumber(l.Price),
		Quantity: parseNumber(l.Quantity),
		ID:       l.ID,
	}
}

func newLevels(levels []model.Level) []Level {
	out := make([]Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, NewLevel(l))
	}
	return out
}

func modelLevels(levels []Level) []model.Level {
	out := make([]model.Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.Model())
	}
	return out
}
