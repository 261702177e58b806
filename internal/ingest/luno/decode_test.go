package luno

import (
	"context"
	"testing"

	"lunofeed/internal/feed"
	"lunofeed/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"
)

func TestDecodeKeepAlive(t *testing.T) {
	for _, frame := range []string{"", "  ", `""`, "\"\"\n"} {
		msg, err := Decode([]byte(frame))
		require.NoError(t, err)
		assert.Nil(t, msg, "frame %q", frame)
	}
}

func TestDecodeSnapshot(t *testing.T) {
	msg, err := Decode([]byte(`{
		"sequence": "24352",
		"asks": [{"id": "BXMC2CJ7HNB88U4", "price": "1234.00", "volume": "0.93"}],
		"bids": [{"id": "BXMC2CJ7HNB88U5", "price": "1201.00", "volume": "1.22"}],
		"status": "ACTIVE",
		"timestamp": 1528884331021
	}`))
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.True(t, msg.IsSnapshot())

	snap, malformed := msg.Snapshot()
	assert.Zero(t, malformed)
	assert.Equal(t, int64(24352), snap.Sequence)
	assert.Equal(t, int64(1528884331021), snap.Timestamp)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, "(1234,0.93,BXMC2CJ7HNB88U4)", snap.Asks[0].Debug())
}

func TestDecodeUpdate(t *testing.T) {
	msg, err := Decode([]byte(`{
		"sequence": "24353",
		"trade_updates": [{"base": "0.1", "counter": "5.0", "maker_order_id": "BXMC2CJ7HNB88U4", "taker_order_id": "BXMC2CJ7HNB88U6"}],
		"create_update": null,
		"delete_update": {"order_id": "BXMC2CJ7HNB88U4"},
		"status_update": null,
		"timestamp": 1528884331022
	}`))
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.False(t, msg.IsSnapshot())

	d := msg.Delta()
	assert.Nil(t, d.Create)
	require.NotNil(t, d.Delete)
	assert.Equal(t, "BXMC2CJ7HNB88U4", d.Delete.OrderID)
	assert.Equal(t, int64(24353), d.Sequence)

	trades := msg.Trades("XBTZAR")
	require.Len(t, trades, 1)
	assert.Equal(t, "BXMC2CJ7HNB88U6", trades[0].TakerOrderID)
}

func TestDecodeNumericForms(t *testing.T) {
	msg, err := Decode([]byte(`{"sequence": 7, "create_update": {"order_id": "A", "type": "ASK", "price": 101.5, "volume": "oops"}}`))
	require.NoError(t, err)

	d := msg.Delta()
	assert.Equal(t, int64(7), d.Sequence)
	require.NotNil(t, d.Create)
	assert.Equal(t, "101.5", d.Create.Price.Decimal.String())
	assert.False(t, d.Create.Volume.Valid)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte(`{"asks": `))
	assert.True(t, errors.Is(err, exception.ErrStreamDecode))
}

func TestNewStreamValidation(t *testing.T) {
	_, err := NewStream(context.Background(), "", feed.Subscription{}, Credential{KeyID: "id", KeySecret: "secret"})
	assert.True(t, errors.Is(err, exception.ErrStreamEmptyMarket))

	_, err = NewStream(context.Background(), "", feed.Subscription{MarketID: "XBTZAR"}, Credential{})
	assert.True(t, errors.Is(err, exception.ErrStreamNoCredential))
}
