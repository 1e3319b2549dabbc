package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fs.ErrPermission
	err := Wrap(cause, ErrUnreadableSource, "hash %s", "a.jpg")

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, ErrUnreadableSource, GetCode(err))
	assert.Contains(t, err.Error(), "UNREADABLE_SOURCE")
	assert.Contains(t, err.Error(), "a.jpg")
}

func TestWrapNil(t *testing.T) {
	if w := Wrap(nil, ErrTransferFailed, "copy"); w != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", w)
	}
}

func TestGetCodeThroughWrapping(t *testing.T) {
	inner := New(ErrCatalogScan, "walk destination")
	outer := fmt.Errorf("build catalog: %w", inner)

	assert.Equal(t, ErrCatalogScan, GetCode(outer))
	assert.True(t, HasCode(outer, ErrCatalogScan))
	assert.False(t, HasCode(outer, ErrTransferFailed))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, ErrUnknown, GetCode(stderrors.New("plain")))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("run: %w", New(ErrDestinationUnavailable, "not mounted"))
	assert.ErrorIs(t, err, &Error{Code: ErrDestinationUnavailable})
	assert.NotErrorIs(t, err, &Error{Code: ErrCatalogScan})
}
