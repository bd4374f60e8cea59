package service

// QRCodeService renders QR code images.
type QRCodeService interface {
	// GenerateProvisioningQR renders the otpauth provisioning URI as a PNG.
	GenerateProvisioningQR(provisioningURI string) ([]byte, error)
}
