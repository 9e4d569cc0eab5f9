package service

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")     // 400
	ErrInvalidReference = errors.New("invalid reference") // 422
	ErrNotFound         = errors.New("not found")         // 404
	ErrForbidden        = errors.New("forbidden")         // 403
	ErrInvalidState     = errors.New("invalid state")     // 409
	ErrConflict         = errors.New("conflict")          // 409
)
