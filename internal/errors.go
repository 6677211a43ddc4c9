package internal

import (
	"fmt"
)

var (
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrBadRequest   = fmt.Errorf("bad request")
	ErrNotFound     = fmt.Errorf("record not found")
)
