package model

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrModelMissing = errors.New("model not available")
	ErrUnavailable  = errors.New("upstream unavailable")
)
