package domain

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrBookingNotFound  = errors.New("booking not found")
)
