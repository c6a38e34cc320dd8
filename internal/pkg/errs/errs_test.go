package errs_test

import (
	"errors"
	"testing"

	"supplychain/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderID", "123")

		assert.Equal(t, "orderID", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("store was reset")
		err := errs.NewObjectNotFoundErrorWithCause("orderID", "123", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: orderID, ID is: 123 (cause: store was reset)",
			err.Error())
	})

	t.Run("Error with non string ID", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("sequence", 456)
		assert.Equal(t, "object not found: 456", err.Error())
	})
}

func TestValueErrors(t *testing.T) {
	t.Run("value is invalid", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("commitment", errors.New("bad hex"))
		assert.Equal(t, "value is invalid: commitment (cause: bad hex)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("value is required", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("supplierID")
		assert.Equal(t, "value is required: supplierID", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("value is out of range", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("latitude", 91.5, -90.0, 90.0)
		assert.Equal(t, "value is out of range: 91.5 is latitude, min value is -90, max value is 90", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("newlines are sanitized", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("text", "hello\nworld", 0, 10)
		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestTransitionErrors(t *testing.T) {
	t.Run("invalid transition", func(t *testing.T) {
		err := errs.NewTransitionIsInvalidError("deliver", "created")
		assert.Equal(t, "transition is invalid: cannot deliver from created", err.Error())
		require.ErrorIs(t, err, errs.ErrTransitionIsInvalid)
	})

	t.Run("already in target status", func(t *testing.T) {
		err := errs.NewAlreadyInTargetStatusError("approve", "approved")
		assert.Equal(t, "already in target status or beyond: approve rejected, order is approved", err.Error())
		require.ErrorIs(t, err, errs.ErrAlreadyInTargetStatus)
	})

	t.Run("proof verification failed", func(t *testing.T) {
		err := errs.NewProofVerificationFailedError("abc")
		assert.Equal(t, "proof verification failed: order abc", err.Error())

		withCause := errs.NewProofVerificationFailedErrorWithCause("abc", errors.New("no commitment recorded"))
		assert.Contains(t, withCause.Error(), "(cause: no commitment recorded)")
		require.ErrorIs(t, withCause, errs.ErrProofVerificationFailed)
	})

	t.Run("errors.As finds typed errors through wrapping", func(t *testing.T) {
		wrapped := errors.Join(errors.New("outer"), errs.NewTransitionIsInvalidError("pay", "approved"))

		var target *errs.TransitionIsInvalidError
		require.ErrorAs(t, wrapped, &target)
		assert.Equal(t, "pay", target.Transition)
		assert.Equal(t, "approved", target.From)
	})
}
