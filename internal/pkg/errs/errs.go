package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound          = errors.New("object not found")
	ErrValueIsInvalid          = errors.New("value is invalid")
	ErrValueIsOutOfRange       = errors.New("value is out of range")
	ErrValueIsRequired         = errors.New("value is required")
	ErrTransitionIsInvalid     = errors.New("transition is invalid")
	ErrAlreadyInTargetStatus   = errors.New("already in target status or beyond")
	ErrProofVerificationFailed = errors.New("proof verification failed")
)

// ObjectNotFoundError is returned when a lookup by identifier finds nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, sanitize(e.ID), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(e.ID))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed a business validation rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string, value, minValue, maxValue any, cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsOutOfRange, sanitize(e.Value), e.ParamName, e.Min, e.Max)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// TransitionIsInvalidError is returned when a transition cannot fire from the
// current status. No state is changed when it is returned.
type TransitionIsInvalidError struct {
	Transition string
	From       string
}

func NewTransitionIsInvalidError(transition, from string) *TransitionIsInvalidError {
	return &TransitionIsInvalidError{Transition: transition, From: from}
}

func (e *TransitionIsInvalidError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %s", ErrTransitionIsInvalid, e.Transition, e.From)
}

func (e *TransitionIsInvalidError) Unwrap() error {
	return ErrTransitionIsInvalid
}

// AlreadyInTargetStatusError is returned for duplicate transition attempts.
type AlreadyInTargetStatusError struct {
	Transition string
	Status     string
}

func NewAlreadyInTargetStatusError(transition, status string) *AlreadyInTargetStatusError {
	return &AlreadyInTargetStatusError{Transition: transition, Status: status}
}

func (e *AlreadyInTargetStatusError) Error() string {
	return fmt.Sprintf("%s: %s rejected, order is %s", ErrAlreadyInTargetStatus, e.Transition, e.Status)
}

func (e *AlreadyInTargetStatusError) Unwrap() error {
	return ErrAlreadyInTargetStatus
}

// ProofVerificationFailedError is returned when a commitment proof does not
// recompute to the stored commitment.
type ProofVerificationFailedError struct {
	OrderID string
	Cause   error
}

func NewProofVerificationFailedError(orderID string) *ProofVerificationFailedError {
	return &ProofVerificationFailedError{OrderID: orderID}
}

func NewProofVerificationFailedErrorWithCause(orderID string, cause error) *ProofVerificationFailedError {
	return &ProofVerificationFailedError{OrderID: orderID, Cause: cause}
}

func (e *ProofVerificationFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: order %s (cause: %v)", ErrProofVerificationFailed, e.OrderID, e.Cause)
	}
	return fmt.Sprintf("%s: order %s", ErrProofVerificationFailed, e.OrderID)
}

func (e *ProofVerificationFailedError) Unwrap() error {
	return ErrProofVerificationFailed
}

func sanitize(v any) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(fmt.Sprintf("%v", v))
}
