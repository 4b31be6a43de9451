// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/PatentFusion/pkg/errors"
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
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"parse error", errors.CodeXMLParseError, "cannot parse EP-1234567-A1.xml"},
		{"invalid param", errors.CodeInvalidParam, "batch must not be empty"},
		{"batch failed", errors.CodeBatchFailed, "worker 3 batch 12 failed"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.CodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("disk full")
	wrapped := errors.Wrap(root, errors.CodeTempFileError, "cannot write temp tree")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.CodeTempFileError, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, root), "errors.Is must traverse to the root cause")
}

func TestWrap_UnknownCodePreservesOriginalCode(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeFileNameInvalid, "bad file name")
	outer := errors.Wrap(inner, errors.CodeUnknown, "while grouping batch")

	require.NotNil(t, outer)
	assert.Equal(t, errors.CodeFileNameInvalid, outer.Code,
		"Wrap with CodeUnknown must keep the inner classification")
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	t.Parallel()

	plain := errors.New(errors.CodeSinkError, "csv write failed")
	assert.Equal(t, "[SINK_ERROR(60002)] csv write failed", plain.Error())

	detailed := plain.WithDetail("patent=EP-100")
	assert.Equal(t, "[SINK_ERROR(60002)] csv write failed: patent=EP-100", detailed.Error())
	assert.Empty(t, plain.Detail, "WithDetail must not mutate the receiver")
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builders
// ─────────────────────────────────────────────────────────────────────────────

func TestWithDetailAndWithCause_NilReceiverSafe(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("y")))
}

func TestWithCause_AttachesCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("permission denied")
	ae := errors.ConfigInvalid("cannot read config").WithCause(cause)

	require.NotNil(t, ae)
	assert.True(t, stderrors.Is(ae, cause))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeMergeAnomaly, "missing anchor")
	outer := errors.Wrap(inner, errors.CodeFusionFailed, "fusion failed")

	assert.True(t, errors.IsCode(outer, errors.CodeFusionFailed))
	assert.True(t, errors.IsCode(outer, errors.CodeMergeAnomaly))
	assert.False(t, errors.IsCode(outer, errors.CodeSinkError))
	assert.False(t, errors.IsCode(nil, errors.CodeFusionFailed))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeScanFailed, errors.GetCode(errors.New(errors.CodeScanFailed, "x")))
}

func TestIsRecoverable(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsRecoverable(errors.New(errors.CodeBatchFailed, "x")))
	assert.True(t, errors.IsRecoverable(stderrors.New("plain errors are recoverable")))
	assert.False(t, errors.IsRecoverable(errors.ConfigInvalid("bad config")))
	assert.False(t, errors.IsRecoverable(errors.New(errors.CodePoolFailed, "pool died")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories
// ─────────────────────────────────────────────────────────────────────────────

func TestConvenienceFactories(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		got  *errors.AppError
		want errors.ErrorCode
	}{
		{"ConfigInvalid", errors.ConfigInvalid("m"), errors.CodeConfigInvalid},
		{"InvalidParam", errors.InvalidParam("m"), errors.CodeInvalidParam},
		{"ParseError", errors.ParseError("m"), errors.CodeXMLParseError},
		{"FusionFailed", errors.FusionFailed("m"), errors.CodeFusionFailed},
		{"SinkError", errors.SinkError("m"), errors.CodeSinkError},
		{"Internal", errors.Internal("m"), errors.CodeInternal},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.NotNil(t, tc.got)
			assert.Equal(t, tc.want, tc.got.Code)
			assert.Equal(t, "m", tc.got.Message)
		})
	}
}
