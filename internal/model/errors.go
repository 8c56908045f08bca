package model

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("schedule conflict")
	ErrInvalidInterval = errors.New("event end must be after start")
)
