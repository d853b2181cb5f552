// Package checkout implements the address, review, payment and confirmation
// steps a shopper walks through to place an order.
package checkout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Step string

const (
	StepAddress      Step = "address-selection"
	StepReview       Step = "review"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var steps = []Step{StepAddress, StepReview, StepPayment, StepConfirmation}

func (s Step) index() int {
	for i, step := range steps {
		if step == s {
			return i
		}
	}
	return -1
}

var (
	ErrAddressRequired = errors.New("select a delivery address first")
	ErrNotInPayment    = errors.New("checkout is not at the payment step")
	ErrFlowComplete    = errors.New("checkout is already complete")
)

// TransitionError reports a move the current step does not allow.
type TransitionError struct {
	From   Step
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s", e.Action, e.From)
}

// Flow is one shopper's checkout in progress. It is not safe for concurrent
// use.
type Flow struct {
	step         Step
	addressID    *uuid.UUID
	paymentError string
	orderID      *uuid.UUID
}

func New() *Flow {
	return &Flow{step: StepAddress}
}

func (f *Flow) Step() Step {
	return f.step
}

func (f *Flow) AddressID() *uuid.UUID {
	return f.addressID
}

// PaymentError is the message of the last failed payment attempt, cleared
// when the shopper leaves the payment step.
func (f *Flow) PaymentError() string {
	return f.paymentError
}

func (f *Flow) OrderID() *uuid.UUID {
	return f.orderID
}

func (f *Flow) Complete() bool {
	return f.step == StepConfirmation
}

// SelectAddress picks the delivery address. It is only allowed before
// payment has started.
func (f *Flow) SelectAddress(id uuid.UUID) error {
	switch f.step {
	case StepAddress, StepReview:
		f.addressID = &id
		return nil
	case StepConfirmation:
		return ErrFlowComplete
	default:
		return &TransitionError{From: f.step, Action: "change address"}
	}
}

// Next moves one step forward. Confirmation is only reachable through
// PaymentSucceeded.
func (f *Flow) Next() error {
	switch f.step {
	case StepAddress:
		if f.addressID == nil {
			return ErrAddressRequired
		}
	case StepReview:
	case StepConfirmation:
		return ErrFlowComplete
	default:
		return &TransitionError{From: f.step, Action: "advance"}
	}

	f.step = steps[f.step.index()+1]
	return nil
}

func (f *Flow) Back() error {
	switch f.step {
	case StepReview, StepPayment:
		f.step = steps[f.step.index()-1]
		f.paymentError = ""
		return nil
	case StepConfirmation:
		return ErrFlowComplete
	default:
		return &TransitionError{From: f.step, Action: "go back"}
	}
}

// PaymentFailed records a gateway failure. The flow stays on the payment
// step so the shopper can retry.
func (f *Flow) PaymentFailed(message string) error {
	if f.step != StepPayment {
		return ErrNotInPayment
	}
	f.paymentError = message
	return nil
}

func (f *Flow) PaymentSucceeded(orderID uuid.UUID) error {
	if f.step != StepPayment {
		return ErrNotInPayment
	}
	f.step = StepConfirmation
	f.paymentError = ""
	f.orderID = &orderID
	return nil
}

// State is a read-only view of a flow for API responses.
type State struct {
	Step         Step       `json:"step"`
	AddressID    *uuid.UUID `json:"address_id,omitempty"`
	PaymentError string     `json:"payment_error,omitempty"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
}

func (f *Flow) State() State {
	return State{
		Step:         f.step,
		AddressID:    f.addressID,
		PaymentError: f.paymentError,
		OrderID:      f.orderID,
	}
}
