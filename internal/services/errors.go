package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
	ErrAddressNotFound    = errors.New("address not found")

	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrNoCartOwner     = errors.New("no user or session to own the cart")

	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrNoCheckout       = errors.New("no checkout in progress")
	ErrPaymentFailed    = errors.New("payment failed")
	ErrPaymentMismatch  = errors.New("payment does not match checkout")
	ErrOrderNotFound    = errors.New("order not found")
	ErrIllegalOrderMove = errors.New("illegal order status transition")
)
