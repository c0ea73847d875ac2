// Package errors_test covers AppError construction, wrapping and the
// error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/perm-tracker/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"case file", errors.ErrCodeCaseFileInvalid, "case.yaml is not valid YAML"},
		{"active entry", errors.ErrCodeRequestEntryActive, "RFI already open"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeDateInvalid, "bad date")
	assert.Equal(t, "[CASE_003] bad date", ae.Error())

	withDetail := ae.WithDetail("pwd.filingDate")
	assert.Equal(t, "[CASE_003] bad date: pwd.filingDate", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestAppError_NilBuilders(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "noop"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeCacheUnavailable, "redis down")
	outer := errors.Wrap(inner, errors.ErrCodeUnknown, "evaluate")

	assert.Equal(t, errors.ErrCodeCacheUnavailable, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestWrap_ChainInspection(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeRequestEntryActive, "rfi open")
	wrapped := fmt.Errorf("adding entry: %w", base)

	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeRequestEntryActive))
	assert.True(t, errors.IsConflict(wrapped))
	assert.False(t, errors.IsValidation(wrapped))
	assert.Equal(t, errors.ErrCodeRequestEntryActive, errors.GetCode(wrapped))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.ErrCodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(errors.InvalidParam("x")))
}

func TestClassifiers(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeCaseFileInvalid, "x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeCaseFileNotFound, "x")))
	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsConflict(errors.Conflict("x")))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// TestCodes
// ─────────────────────────────────────────────────────────────────────────────

func TestHTTPStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusConflict, errors.HTTPStatusFor(errors.ErrCodeRequestEntryActive))
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatusFor(errors.ErrCodeCaseFileInvalid))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatusFor(errors.ErrorCode("NOPE")))
	assert.Equal(t, http.StatusUnprocessableEntity, errors.New(errors.ErrCodeValidation, "x").HTTPStatus())
}

func TestEveryCodeHasStatus(t *testing.T) {
	t.Parallel()

	for code := range errors.ErrorCodeMessage {
		_, ok := errors.ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "code %s has a message but no HTTP status", code)
	}
	assert.Equal(t, "unknown error", errors.DefaultMessage(errors.ErrorCode("NOPE")))
}
