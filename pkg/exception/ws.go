package exception

import "github.com/yanun0323/errors"

// WS errors
var (
	ErrStreamDecode       = errors.New("stream: decode frame")
	ErrStreamEmptyMarket  = errors.New("stream: empty market id")
	ErrStreamNoCredential = errors.New("stream: missing credentials")
)
