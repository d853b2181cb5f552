// internal/handlers/helpers.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/catalog"
	"github.com/javajoker/storefront-backend/internal/checkout"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/middleware"
	"github.com/javajoker/storefront-backend/internal/pricing"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
	"github.com/javajoker/storefront-backend/internal/wishlist"
)

// bind decodes the JSON body into req and runs struct validation. It writes
// the error response itself and reports whether the handler may continue.
func bind(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// currentUser returns the authenticated caller. AuthRequired guarantees a
// parsable id; anything else is answered with 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "", "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidToken), "")
		return uuid.Nil, false
	}
	return userID, true
}

// shopperOwner resolves whose cart a request addresses: the signed in user,
// or the guest session named by the X-Session-ID header.
func shopperOwner(c *gin.Context) (services.Owner, bool) {
	if userIDStr, ok := utils.GetUserIDFromContext(c); ok {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			return services.UserOwner(userID), true
		}
	}

	owner := services.GuestOwner(c.GetHeader(middleware.SessionIDHeader))
	if !owner.Valid() {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeySessionIDRequired), nil)
		return services.Owner{}, false
	}
	return owner, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

func productIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "product id"), nil)
		return 0, false
	}
	return id, true
}

// respondError maps a service error onto the response envelope. Unknown
// errors are logged and reported as 500.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var (
		couponErr     *pricing.CouponError
		orderMoveErr  *services.IllegalTransitionError
		stepErr       *checkout.TransitionError
		invalidFields = utils.GetValidationErrors(err)
	)

	switch {
	case len(invalidFields) > 0:
		utils.ValidationErrorResponse(c, invalidFields)

	case errors.As(err, &couponErr):
		key := i18n.KeyCouponUnknown
		if couponErr.Reason == pricing.ReasonMinNotReached {
			key = i18n.KeyCouponMinNotReached
		}
		utils.CouponRejectedResponse(c, i18n.T(lang, key, couponErr.Code), gin.H{
			"code":   couponErr.Code,
			"reason": couponErr.Reason,
		})

	case errors.Is(err, services.ErrPaymentFailed):
		utils.PaymentRequiredResponse(c, err.Error())
	case errors.Is(err, services.ErrPaymentMismatch):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyPaymentMismatch))

	case errors.As(err, &orderMoveErr):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderBadStatus, orderMoveErr.From, orderMoveErr.To))
	case errors.Is(err, checkout.ErrAddressRequired):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCheckoutNoAddress), nil)
	case errors.As(err, &stepErr),
		errors.Is(err, checkout.ErrNotInPayment),
		errors.Is(err, checkout.ErrFlowComplete),
		errors.Is(err, services.ErrNoCheckout):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCheckoutStep))
	case errors.Is(err, services.ErrEmptyCart):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartEmpty), nil)

	case errors.Is(err, catalog.ErrNotLoaded):
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyCatalogNotLoaded))
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
	case errors.Is(err, services.ErrOutOfStock):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyProductOutOfStock))
	case errors.Is(err, cart.ErrInvalidQuantity):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "quantity"), nil)
	case errors.Is(err, wishlist.ErrNotInWishlist):
		utils.NotFoundResponse(c, i18n.KeyWishlistNotFound)
	case errors.Is(err, services.ErrNoCartOwner):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeySessionIDRequired), nil)
	case errors.Is(err, services.ErrInvalidPrice):
		utils.BadRequestResponse(c, err.Error(), nil)

	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials), "")
	case errors.Is(err, services.ErrAccountSuspended):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthAccountSuspended))
	case errors.Is(err, services.ErrEmailTaken):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
	case errors.Is(err, services.ErrWrongPassword):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyAuthWrongPassword), nil)
	case errors.Is(err, services.ErrAdminProtected):
		utils.ForbiddenResponse(c, err.Error())

	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, i18n.KeyUserNotFound)
	case errors.Is(err, services.ErrAddressNotFound):
		utils.NotFoundResponse(c, i18n.KeyAddressNotFound)
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, i18n.KeyOrderNotFound)

	case errors.Is(err, services.ErrFileTooLarge):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTooLarge), nil)
	case errors.Is(err, services.ErrFileType):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileInvalidType), nil)
	case errors.Is(err, services.ErrStorageNotConfigured),
		errors.Is(err, services.ErrGatewayNotConfigured):
		utils.ServiceUnavailableResponse(c, err.Error())

	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}
