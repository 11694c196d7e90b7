package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		pin     string
		wantErr bool
	}{
		{"1234", false},
		{"123456", false},
		{"123", true},
		{"", true},
		{"12a4", true},
		{"1234567890123", true},
	}
	for _, tc := range testCases {
		t.Run(tc.pin, func(t *testing.T) {
			err := Validate(tc.pin)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPIN)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashCheck(t *testing.T) {
	hash, err := Hash("2580")
	require.NoError(t, err)
	assert.NotContains(t, hash, "2580")

	assert.NoError(t, Check(hash, "2580"))
	assert.ErrorIs(t, Check(hash, "0000"), ErrWrongPIN)
}

func TestHash_RejectsShortPIN(t *testing.T) {
	_, err := Hash("12")
	assert.ErrorIs(t, err, ErrInvalidPIN)
}
