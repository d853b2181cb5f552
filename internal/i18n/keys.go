// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess            = "success"
	KeyInternalError      = "error.internal"
	KeyServiceUnavailable = "error.service_unavailable"
	KeyRateLimited        = "error.rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccountSuspended   = "auth.account_suspended"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordChanged    = "auth.password_changed"
	KeyAuthWrongPassword      = "auth.wrong_password"

	// Profile
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyAddressCreated     = "address.created"
	KeyAddressUpdated     = "address.updated"
	KeyAddressDeleted     = "address.deleted"
	KeyAddressNotFound    = "address.not_found"

	// Catalog
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductNotFound   = "product.not_found"
	KeyProductOutOfStock = "product.out_of_stock"
	KeyCatalogNotLoaded  = "catalog.not_loaded"

	// Cart and wishlist
	KeyCartUpdated       = "cart.updated"
	KeyCartCleared       = "cart.cleared"
	KeyCartEmpty         = "cart.empty"
	KeyCartItemNotFound  = "cart.item_not_found"
	KeyWishlistUpdated   = "wishlist.updated"
	KeyWishlistNotFound  = "wishlist.item_not_found"
	KeyWishlistMoved     = "wishlist.moved_to_cart"
	KeySessionIDRequired = "cart.session_required"

	// Checkout
	KeyCouponApplied       = "coupon.applied"
	KeyCouponRemoved       = "coupon.removed"
	KeyCouponUnknown       = "coupon.unknown"
	KeyCouponMinNotReached = "coupon.min_not_reached"
	KeyCheckoutStep        = "checkout.invalid_step"
	KeyCheckoutNoAddress   = "checkout.address_required"

	// Payments and orders
	KeyPaymentFailed     = "payment.failed"
	KeyPaymentMismatch   = "payment.amount_mismatch"
	KeyPaymentRecorded   = "payment.failure_recorded"
	KeyOrderPlaced       = "order.placed"
	KeyOrderNotFound     = "order.not_found"
	KeyOrderStatusUpdate = "order.status_updated"
	KeyOrderBadStatus    = "order.invalid_transition"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
)
