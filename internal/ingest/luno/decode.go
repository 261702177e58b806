package luno

import (
	"bytes"

	"lunofeed/internal/feed"
	"lunofeed/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

var keepAlive = []byte(`""`)

// Decode parses one stream frame. Empty frames and keep-alives decode to a nil
// message.
func Decode(data []byte) (*feed.Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, keepAlive) {
		return nil, nil
	}

	var msg feed.Message
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(exception.ErrStreamDecode, err.Error())
	}
	return &msg, nil
}
