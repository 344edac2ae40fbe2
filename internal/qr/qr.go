// Package qr renders payloads as inline PNG data URLs.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered edge length in pixels.
const DefaultSize = 300

// DataURL encodes the content as a QR PNG and returns a data: URL suitable
// for direct embedding in an <img> tag.
func DataURL(content string, size int) (string, error) {
	if content == "" {
		return "", fmt.Errorf("qr: empty content")
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("qr: encode: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
