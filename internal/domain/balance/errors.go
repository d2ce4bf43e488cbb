package balance

import "errors"

var (
	// ErrInsufficientFunds indicates the balance cannot cover the debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPaymentFailed indicates the external transfer was rejected.
	ErrPaymentFailed = errors.New("external payment failed")
	// ErrInvalidAmount indicates a zero or otherwise unusable amount.
	ErrInvalidAmount = errors.New("invalid amount")
)
