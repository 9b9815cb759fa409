package apperrors

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrJobNotFound          = errors.New("job not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrWithdrawalNotFound   = errors.New("withdrawal not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInternalServer       = errors.New("internal server error")
	ErrInvalidAuthHeader    = errors.New("invalid or missing Authorization header")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInvalidCredentials   = errors.New("invalid login or password")
	ErrForbidden            = errors.New("operation not allowed for this role")

	ErrInvalidState         = errors.New("invalid state transition")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrBelowMinimum         = errors.New("amount is below the minimum withdrawal")
	ErrProcessorUnavailable = errors.New("payment processor is not configured")
)
