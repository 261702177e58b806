package enum

// Channel is the kind of update a consumer waits for.
type Channel uint8

const (
	_channel_beg Channel = iota
	ChannelOrderBook
	ChannelTrades
	_channel_end
)

func (c Channel) IsAvailable() bool {
	return c > _channel_beg && c < _channel_end
}

func (c Channel) String() string {
	switch c {
	case ChannelOrderBook:
		return "orderbook"
	case ChannelTrades:
		return "trades"
	default:
		return "unknown"
	}
}

// Key builds the routing key "kind:symbol".
func (c Channel) Key(symbol string) string {
	return c.String() + ":" + symbol
}
