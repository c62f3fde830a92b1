package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoderTransform(t *testing.T) {
	enc, err := DecodeLabelEncoder([]byte(`{"classes":["Female","Male","Other"]}`))
	require.NoError(t, err)

	code, err := enc.Transform("Male")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	assert.True(t, enc.Contains("Female"))
	assert.False(t, enc.Contains("female"))

	_, err = enc.Transform("Unknown")
	assert.ErrorIs(t, err, ErrUnknownLabel)
	assert.Contains(t, err.Error(), "'Unknown'")
}

func TestNewLabelEncoderRejectsBadClasses(t *testing.T) {
	_, err := NewLabelEncoder(nil)
	assert.Error(t, err)

	_, err = NewLabelEncoder([]string{"never", "never"})
	assert.Error(t, err)
}
