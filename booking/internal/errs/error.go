package errs

import (
	"errors"
)

var (
	ErrNotFound         = errors.New("reservation not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrGuestNotFound    = errors.New("guest not found")
	ErrRoomNotAvailable = errors.New("room is not available for the requested dates")

	ErrInvalidDuration    = errors.New("check-out must be after check-in")
	ErrCheckInPast        = errors.New("check-in date is in the past")
	ErrCapacityExceeded   = errors.New("guest count exceeds room capacity")
	ErrServiceUnavailable = errors.New("requested service is not offered")
	ErrInvalidPromoCode   = errors.New("promo code is not recognized")

	ErrInvalidState = errors.New("invalid lifecycle transition")
)
