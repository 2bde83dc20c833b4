// Package qr mints connector QR tokens and renders the payment links they
// resolve to.
package qr

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	TokenLength = 32

	paymentPath   = "/api/payments/qr-initiate/"
	dataURIPrefix = "data:image/png;base64,"
	// negative size means pixels per module
	modulePixels = -10
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// GenerateToken derives a fresh token for a connector. Each call mixes in a
// random UUID, so identical inputs still yield distinct tokens.
func GenerateToken(stationID, connectorType string, powerKW float64) (string, error) {
	nonce, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("qr: token nonce: %w", err)
	}
	return tokenFrom(stationID, connectorType, powerKW, nonce), nil
}

func tokenFrom(stationID, connectorType string, powerKW float64, nonce uuid.UUID) string {
	seed := strings.Join([]string{
		stationID,
		connectorType,
		strconv.FormatFloat(powerKW, 'f', -1, 64),
		nonce.String(),
	}, "-")
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:TokenLength]
}

func IsToken(s string) bool { return tokenPattern.MatchString(s) }

// PaymentURL is the link encoded into a connector's QR image.
func PaymentURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + paymentPath + token + "/"
}

// DataURI renders content as a PNG QR code wrapped in a base64 data URI.
func DataURI(content string) (string, error) {
	if content == "" {
		return "", errors.New("qr: empty content")
	}
	code, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("qr: encode: %w", err)
	}
	png, err := code.PNG(modulePixels)
	if err != nil {
		return "", fmt.Errorf("qr: render png: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
