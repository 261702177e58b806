package exception

import "github.com/yanun0323/errors"

var (
	ErrBookNil = errors.New("book: nil order book")
)
