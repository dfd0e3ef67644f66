package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GeneratePickupQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	qrBytes, err := service.GeneratePickupQR("user-1", "offer-1")
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)

	// Verify it's a valid PNG (starts with PNG magic number)
	assert.Equal(t, byte(0x89), qrBytes[0])
	assert.Equal(t, byte(0x50), qrBytes[1])
	assert.Equal(t, byte(0x4E), qrBytes[2])
	assert.Equal(t, byte(0x47), qrBytes[3])
}

func TestQRCodeService_ParsePickupQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	t.Run("valid payload", func(t *testing.T) {
		userID, offerID, err := service.ParsePickupQR(`{"user_id":"user-1","offer_id":"offer-1","type":"pickup"}`)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, "offer-1", offerID)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, _, err := service.ParsePickupQR(`{"user_id":"user-1","offer_id":"offer-1","type":"subscription"}`)
		assert.Error(t, err)
	})

	t.Run("missing ids", func(t *testing.T) {
		_, _, err := service.ParsePickupQR(`{"type":"pickup"}`)
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, _, err := service.ParsePickupQR(`not-json`)
		assert.Error(t, err)
	})
}
