package exception

import "github.com/yanun0323/errors"

var (
	ErrConfigNoMarkets       = errors.New("config: no markets")
	ErrConfigInvalidMarket   = errors.New("config: invalid market")
	ErrConfigDuplicateMarket = errors.New("config: duplicate market")
	ErrConfigInvalidValue    = errors.New("config: invalid value")
)
