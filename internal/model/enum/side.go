package enum

// Side is the book side a resting order belongs to.
type Side uint8

const (
	SideUnknown Side = iota
	SideBid
	SideAsk
)

// ParseSide maps the venue's order type field onto a Side.
func ParseSide(s string) Side {
	switch s {
	case "BID":
		return SideBid
	case "ASK":
		return SideAsk
	default:
		return SideUnknown
	}
}

func (s Side) IsAvailable() bool {
	return s == SideBid || s == SideAsk
}

func (s Side) String() string {
	switch s {
	case SideBid:
		return "bid"
	case SideAsk:
		return "ask"
	default:
		return "unknown"
	}
}
