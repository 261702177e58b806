package exception

import "github.com/yanun0323/errors"

// General errors
var (
	ErrInvalidArgument = errors.New("invalid argument")
)
