// services/qrcode_service.go
package services

import (
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can swap it out.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// TicketURL is the verification link printed on a ticket.
func TicketURL(applicationURL, ticketID string) string {
	if applicationURL == "" {
		applicationURL = "http://localhost:8080" // Default for local testing
	}
	return strings.TrimRight(applicationURL, "/") + "/api/tickets/" + ticketID
}

// GenerateTicketQRCode renders the verification link of a ticket as a PNG.
func GenerateTicketQRCode(applicationURL, ticketID string, size int, encode QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	if ticketID == "" {
		return nil, errors.New("ticket id is required")
	}
	if encode == nil {
		encode = qrcode.Encode
	}

	png, err := encode(TicketURL(applicationURL, ticketID), qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
