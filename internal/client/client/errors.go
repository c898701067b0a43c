package client

import (
	"errors"

	"github.com/dmitrijs2005/orbit/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = common.ErrorUnauthorized
	ErrNoSession    = errors.New("no active session")
)
