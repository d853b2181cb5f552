package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toPayment(t *testing.T) *Flow {
	t.Helper()
	f := New()
	require.NoError(t, f.SelectAddress(uuid.New()))
	require.NoError(t, f.Next())
	require.NoError(t, f.Next())
	require.Equal(t, StepPayment, f.Step())
	return f
}

func TestNextRequiresAddress(t *testing.T) {
	f := New()
	assert.ErrorIs(t, f.Next(), ErrAddressRequired)
	assert.Equal(t, StepAddress, f.Step())

	require.NoError(t, f.SelectAddress(uuid.New()))
	require.NoError(t, f.Next())
	assert.Equal(t, StepReview, f.Step())
}

func TestNextCannotEnterConfirmation(t *testing.T) {
	f := toPayment(t)

	var transitionErr *TransitionError
	require.ErrorAs(t, f.Next(), &transitionErr)
	assert.Equal(t, StepPayment, transitionErr.From)
	assert.Equal(t, StepPayment, f.Step())
}

func TestBack(t *testing.T) {
	f := New()
	var transitionErr *TransitionError
	assert.ErrorAs(t, f.Back(), &transitionErr)

	f = toPayment(t)
	require.NoError(t, f.Back())
	assert.Equal(t, StepReview, f.Step())
	require.NoError(t, f.Back())
	assert.Equal(t, StepAddress, f.Step())
	assert.NotNil(t, f.AddressID())
}

func TestPaymentFailureStaysOnPayment(t *testing.T) {
	f := toPayment(t)

	require.NoError(t, f.PaymentFailed("card declined"))
	assert.Equal(t, StepPayment, f.Step())
	assert.Equal(t, "card declined", f.PaymentError())

	require.NoError(t, f.PaymentFailed("insufficient funds"))
	assert.Equal(t, StepPayment, f.Step())
	assert.Equal(t, "insufficient funds", f.PaymentError())
}

func TestPaymentSuccessConfirms(t *testing.T) {
	f := toPayment(t)
	require.NoError(t, f.PaymentFailed("card declined"))

	orderID := uuid.New()
	require.NoError(t, f.PaymentSucceeded(orderID))
	assert.True(t, f.Complete())
	assert.Empty(t, f.PaymentError())
	assert.Equal(t, orderID, *f.OrderID())

	assert.ErrorIs(t, f.Next(), ErrFlowComplete)
	assert.ErrorIs(t, f.Back(), ErrFlowComplete)
	assert.ErrorIs(t, f.PaymentSucceeded(uuid.New()), ErrNotInPayment)
	assert.ErrorIs(t, f.SelectAddress(uuid.New()), ErrFlowComplete)
}

func TestPaymentEventsOutsidePayment(t *testing.T) {
	f := New()
	assert.ErrorIs(t, f.PaymentFailed("x"), ErrNotInPayment)
	assert.ErrorIs(t, f.PaymentSucceeded(uuid.New()), ErrNotInPayment)
	assert.Equal(t, StepAddress, f.Step())
}

func TestAddressLockedDuringPayment(t *testing.T) {
	f := toPayment(t)
	var transitionErr *TransitionError
	assert.ErrorAs(t, f.SelectAddress(uuid.New()), &transitionErr)
}
