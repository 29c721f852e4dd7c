// Package qr renders the card artifact: a QR code whose payload is the
// attendant URL carrying the beneficiary's access token.
package qr

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the pixel size of generated card images.
const DefaultSize = 256

// CardURL builds the attendant URL embedded in the QR payload.
func CardURL(base, token string) string {
	return fmt.Sprintf("%s/playero?token=%s", base, url.QueryEscape(token))
}

// CardPNG encodes the attendant URL for the given token as a QR PNG.
func CardPNG(base, token string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(CardURL(base, token), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
