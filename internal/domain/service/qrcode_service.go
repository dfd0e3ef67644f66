package service

// QRCodeService generates and parses the pickup QR code a user shows at the
// canteen counter to claim a reservation.
type QRCodeService interface {
	// GeneratePickupQR renders a PNG QR code encoding the (user, offer) pair.
	GeneratePickupQR(userID, offerID string) ([]byte, error)

	// ParsePickupQR decodes scanned QR payload back into the (user, offer) pair.
	ParsePickupQR(qrData string) (userID, offerID string, err error)
}
