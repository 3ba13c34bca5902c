package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidSignature     = errors.New("invalid callback signature")
	ErrInvalidCallback      = errors.New("malformed payment callback")
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
	ErrInvalidAdminKey      = errors.New("invalid admin key")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidDeadline      = errors.New("invalid deadline")

	// ErrMissingChargeID and ErrMissingStatus both match ErrInvalidCallback.
	ErrMissingChargeID = fmt.Errorf("%w: missing charge id", ErrInvalidCallback)
	ErrMissingStatus   = fmt.Errorf("%w: missing status", ErrInvalidCallback)
)
