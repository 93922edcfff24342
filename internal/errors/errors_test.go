package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/econrcx/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryMessages(t *testing.T) {
	f := errors.New()

	err := f.New(errors.ErrInvalidDeviceType)
	assert.Equal(t, errors.ErrInvalidDeviceType, err.Code())
	assert.Equal(t, `device_type must be "AHU" or "RTU"`, err.Error())

	withData := f.WithData(errors.ErrInvalidDeviceType, "vav")
	assert.Equal(t, `device_type must be "AHU" or "RTU": vav`, withData.Error())

	custom := f.WithMessage(errors.ErrorCode("unknown_code"), "custom text")
	assert.Equal(t, "custom text", custom.Error())
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("broker unreachable")
	err := errors.New().Wrap(errors.ErrInitFailed, cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Initialization failed: broker unreachable", err.Error())

	wrapped := fmt.Errorf("startup: %w", err)
	code, ok := errors.Code(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInitFailed, code)

	_, ok = errors.Code(cause)
	assert.False(t, ok)
}

func TestUnknownCodeFallsBackToCode(t *testing.T) {
	assert.Equal(t, "something_else", errors.GetErrorMessage("something_else"))
}

func TestDataAndCause(t *testing.T) {
	err := errors.New().Wrap(errors.ErrSubscribe, fmt.Errorf("not authorized")).WithData("devices/a/all")

	assert.Equal(t, "Failed to subscribe to device topic: devices/a/all: not authorized", err.Error())
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("pid: %w", errors.New().WithData(errors.ErrAlreadyRunning, 42))

	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
	assert.False(t, errors.HasCode(err, errors.ErrPIDFile))
	assert.True(t, errors.Is(err, errors.New().New(errors.ErrAlreadyRunning)))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrAlreadyRunning))
}

func TestStructDataKeepsFieldNames(t *testing.T) {
	type phase struct {
		Name    string
		Samples int
	}
	err := errors.New().WithData(errors.ErrTelemetryWrite, phase{Name: "oat", Samples: 3})

	assert.Equal(t, "Failed to write telemetry: {Name:oat Samples:3}", err.Error())

	var coded errors.Error
	require.True(t, errors.As(fmt.Errorf("flush: %w", err), &coded))
	assert.Equal(t, phase{Name: "oat", Samples: 3}, coded.GetData())
}

func TestWithMessageReturnsCopy(t *testing.T) {
	base := errors.New().WithData(errors.ErrInvalidDeviceType, "vav")
	custom := base.WithMessage("unsupported unit")

	assert.Equal(t, `device_type must be "AHU" or "RTU": vav`, base.Error())
	assert.Equal(t, "unsupported unit: vav", custom.Error())
	assert.Equal(t, base.Error(), base.Error())
	assert.Equal(t, base.Code(), custom.Code())
}
