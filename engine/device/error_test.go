package device

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckNoError(t *testing.T) {
	assert.NoError(t, Check(NoError))
}

func TestCheckReturnsTypedError(t *testing.T) {
	err := Check(InvalidOperation)
	require.Error(t, err)

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, InvalidOperation, de.Code)
	assert.Contains(t, err.Error(), "INVALID_OPERATION")
}

func TestCheckOutOfMemoryAborts(t *testing.T) {
	var aborted []Enum
	prev := abort
	abort = func(code Enum) { aborted = append(aborted, code) }
	t.Cleanup(func() { abort = prev })

	err := Check(OutOfMemory)
	require.Error(t, err)
	assert.Equal(t, []Enum{OutOfMemory}, aborted)

	_ = Check(InvalidValue)
	assert.Len(t, aborted, 1)
}

func TestIsCodeSeesThroughWrapping(t *testing.T) {
	err := eris.Wrap(Check(InvalidValue), "uploading positions")
	assert.True(t, IsCode(err, InvalidValue))
	assert.False(t, IsCode(err, InvalidEnum))
	assert.False(t, IsCode(nil, InvalidValue))
}

func TestEnumString(t *testing.T) {
	assert.Equal(t, "SHADER_STORAGE_BUFFER", ShaderStorageBuffer.String())
	assert.Equal(t, "0x88E8", DynamicDraw.String())
}
