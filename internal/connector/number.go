package connector

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"evmeri/internal/apperr"
)

// Number is a JSON number or numeric string kept as sent. Decoding never
// fails; a malformed value is reported against its field by Decimal.
type Number struct {
	raw string
}

// NumberOf wraps s as if it had been decoded from a request.
func NumberOf(s string) *Number { return &Number{raw: s} }

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	n.raw = strings.TrimSpace(s)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(n.raw)), nil
}

// Decimal parses the value, recording InvalidNumber for field when it is not
// a finite decimal.
func (n Number) Decimal(fe *apperr.FieldErrors, field string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(n.raw)
	if err != nil || n.raw == "" {
		fe.Add(field, apperr.InvalidNumber)
		return decimal.Decimal{}, false
	}
	return d, true
}
