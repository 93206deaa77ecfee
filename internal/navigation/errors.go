package navigation

import "errors"

var (
	ErrInvalidMode  = errors.New("mode must be one of driving, walking, cycling")
	ErrInvalidPoint = errors.New("coordinates out of range")
)
