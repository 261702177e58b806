package book

import (
	"slices"
	"sort"

	"lunofeed/internal/model"

	"github.com/shopspring/decimal"
)

// Side is one half of an order book kept sorted best price first. Levels that
// carry an ID are indexed by it; levels without one are aggregated by price.
//
// Side is not safe for concurrent use.
type Side struct {
	desc   bool
	levels []model.Level
	ids    map[string]decimal.NullDecimal
}

// NewBids returns a side sorted by descending price.
func NewBids() *Side {
	return newSide(true)
}

// NewAsks returns a side sorted by ascending price.
func NewAsks() *Side {
	return newSide(false)
}

func newSide(desc bool) *Side {
	return &Side{
		desc: desc,
		ids:  make(map[string]decimal.NullDecimal),
	}
}

// IsBid reports whether the side is sorted descending.
func (s *Side) IsBid() bool {
	return s.desc
}

func (s *Side) Len() int {
	return len(s.levels)
}

// Store upserts a level. A level with a zero quantity removes the matching
// level instead of being stored.
func (s *Side) Store(l model.Level) {
	if len(l.ID) != 0 {
		s.storeByID(l)
		return
	}

	i := s.indexOfPrice(l.Price)
	switch {
	case l.IsRemoval():
		if i >= 0 {
			s.removeAt(i)
		}
	case i >= 0:
		s.levels[i] = l
	default:
		s.insert(l)
	}
}

func (s *Side) storeByID(l model.Level) {
	if l.IsRemoval() {
		s.Remove(l.ID)
		return
	}

	if i := s.indexOfID(l.ID); i >= 0 {
		if s.samePrice(s.levels[i].Price, l.Price) {
			s.levels[i] = l
			return
		}
		s.removeAt(i)
	}

	s.insert(l)
}

// Remove deletes the level carrying id. Unknown ids are ignored.
func (s *Side) Remove(id string) bool {
	i := s.indexOfID(id)
	if i < 0 {
		return false
	}

	s.removeAt(i)
	return true
}

func (s *Side) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Side) Get(id string) (model.Level, bool) {
	i := s.indexOfID(id)
	if i < 0 {
		return model.Level{}, false
	}

	return s.levels[i], true
}

// Best returns the top of the side.
func (s *Side) Best() (model.Level, bool) {
	if len(s.levels) == 0 {
		return model.Level{}, false
	}

	return s.levels[0], true
}

// Levels copies at most limit levels, best first. limit <= 0 copies all.
func (s *Side) Levels(limit int) []model.Level {
	n := len(s.levels)
	if limit > 0 && limit < n {
		n = limit
	}

	return slices.Clone(s.levels[:n])
}

// Reset replaces the content of the side.
func (s *Side) Reset(levels []model.Level) {
	s.levels = s.levels[:0]
	clear(s.ids)
	for _, l := range levels {
		s.Store(l)
	}
}

func (s *Side) Equal(o *Side) bool {
	if s == nil || o == nil {
		return s == o
	}

	return s.desc == o.desc && slices.EqualFunc(s.levels, o.levels, model.Level.Equal)
}

// before reports whether price a ranks strictly ahead of price b. Null
// prices rank behind every known price.
func (s *Side) before(a, b decimal.NullDecimal) bool {
	switch {
	case !a.Valid:
		return false
	case !b.Valid:
		return true
	case s.desc:
		return a.Decimal.GreaterThan(b.Decimal)
	default:
		return a.Decimal.LessThan(b.Decimal)
	}
}

func (s *Side) samePrice(a, b decimal.NullDecimal) bool {
	return !s.before(a, b) && !s.before(b, a)
}

// lowerBound is the first index whose price does not rank ahead of p.
func (s *Side) lowerBound(p decimal.NullDecimal) int {
	return sort.Search(len(s.levels), func(i int) bool {
		return !s.before(s.levels[i].Price, p)
	})
}

// upperBound is the first index whose price ranks behind p, so levels at an
// equal price keep their arrival order.
func (s *Side) upperBound(p decimal.NullDecimal) int {
	return sort.Search(len(s.levels), func(i int) bool {
		return s.before(p, s.levels[i].Price)
	})
}

func (s *Side) indexOfID(id string) int {
	p, ok := s.ids[id]
	if !ok {
		return -1
	}

	for i := s.lowerBound(p); i < len(s.levels) && s.samePrice(s.levels[i].Price, p); i++ {
		if s.levels[i].ID == id {
			return i
		}
	}

	return -1
}

func (s *Side) indexOfPrice(p decimal.NullDecimal) int {
	for i := s.lowerBound(p); i < len(s.levels) && s.samePrice(s.levels[i].Price, p); i++ {
		if len(s.levels[i].ID) == 0 {
			return i
		}
	}

	return -1
}

func (s *Side) insert(l model.Level) {
	s.levels = slices.Insert(s.levels, s.upperBound(l.Price), l)
	if len(l.ID) != 0 {
		s.ids[l.ID] = l.Price
	}
}

func (s *Side) removeAt(i int) {
	if id := s.levels[i].ID; len(id) != 0 {
		delete(s.ids, id)
	}

	s.levels = slices.Delete(s.levels, i, i+1)
}
