package service

import "errors"

var (
	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidListingID is returned when listing ID is empty.
	ErrInvalidListingID = errors.New("invalid listing id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidTransactionID is returned when transaction ID is empty.
	ErrInvalidTransactionID = errors.New("invalid transaction id")

	// ErrInvalidPaymentAmount is returned when payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentMethod is returned when payment method is empty.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidCurrency is returned when currency code is empty.
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrUnauthorized is returned when the actor does not own the booking.
	ErrUnauthorized = errors.New("booking does not belong to user")

	// ErrInvalidDateRange is returned when check-out does not follow check-in.
	ErrInvalidDateRange = errors.New("check-out must be after check-in")

	// ErrPaymentInProgress is returned when another intent creation for the
	// same booking currently holds the booking lock.
	ErrPaymentInProgress = errors.New("payment already in progress for booking")

	// ErrBookingNotCancellable is returned when trying to cancel a booking
	// that has already been paid or cancelled.
	ErrBookingNotCancellable = errors.New("booking cannot be cancelled in current state")
)
