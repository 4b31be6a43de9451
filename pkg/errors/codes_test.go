// Package errors_test provides table-driven unit tests for the error code
// definitions in pkg/errors/codes.go.
package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/PatentFusion/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test data — exhaustive table of every declared ErrorCode
// ─────────────────────────────────────────────────────────────────────────────

type codeEntry struct {
	code           errors.ErrorCode
	expectedString string
	recoverable    bool
}

// allCodes enumerates every ErrorCode constant defined in codes.go together
// with its expected String() output and recoverability.  The table is the
// single source of truth for the test functions below.
var allCodes = []codeEntry{
	// ── General ──────────────────────────────────────────────────────────────
	{errors.CodeOK, "OK", true},
	{errors.CodeUnknown, "UNKNOWN", true},
	{errors.CodeInvalidParam, "INVALID_PARAM", true},
	{errors.CodeInternal, "INTERNAL_ERROR", true},

	// ── Configuration ────────────────────────────────────────────────────────
	{errors.CodeConfigInvalid, "CONFIG_INVALID", false},
	{errors.CodeConfigPathMissing, "CONFIG_PATH_MISSING", false},
	{errors.CodeConfigOfficeUnknown, "CONFIG_OFFICE_UNKNOWN", false},

	// ── Scan ─────────────────────────────────────────────────────────────────
	{errors.CodeScanFailed, "SCAN_FAILED", true},
	{errors.CodeFileNameInvalid, "FILE_NAME_INVALID", true},
	{errors.CodeXMLParseError, "XML_PARSE_ERROR", true},

	// ── Fusion ───────────────────────────────────────────────────────────────
	{errors.CodeFusionFailed, "FUSION_FAILED", true},
	{errors.CodeMergeAnomaly, "MERGE_ANOMALY", true},
	{errors.CodeEmptyGroup, "EMPTY_GROUP", true},

	// ── Pipeline ─────────────────────────────────────────────────────────────
	{errors.CodeBatchFailed, "BATCH_FAILED", true},
	{errors.CodeWorkerTimeout, "WORKER_TIMEOUT", true},
	{errors.CodePoolFailed, "POOL_FAILED", false},

	// ── Output ───────────────────────────────────────────────────────────────
	{errors.CodeTempFileError, "TEMP_FILE_ERROR", true},
	{errors.CodeSinkError, "SINK_ERROR", true},
	{errors.CodeDirCreateError, "DIR_CREATE_ERROR", true},
}

func TestErrorCode_String(t *testing.T) {
	t.Parallel()

	for _, tc := range allCodes {
		tc := tc
		t.Run(tc.expectedString, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expectedString, tc.code.String())
		})
	}
}

func TestErrorCode_String_UnknownCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UNKNOWN_CODE", errors.ErrorCode(99999).String())
}

func TestErrorCode_IsRecoverable(t *testing.T) {
	t.Parallel()

	for _, tc := range allCodes {
		tc := tc
		t.Run(tc.expectedString, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.recoverable, tc.code.IsRecoverable())
		})
	}
}

func TestErrorCode_ExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, errors.CodeOK.ExitCode())
	assert.Equal(t, 1, errors.CodeConfigInvalid.ExitCode())
	assert.Equal(t, 1, errors.CodeXMLParseError.ExitCode())
	assert.Equal(t, 1, errors.ErrorCode(99999).ExitCode())
}
