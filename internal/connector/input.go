package connector

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

// ErrNoStation means neither the payload nor the route named a station.
var ErrNoStation = errors.New("station id required for connector creation")

var maxDecimal = decimal.NewFromInt(10000)

const maxDescription = 1000

// Input is the create payload. PowerKW and PricePerKWh are required; JSON
// numbers and numeric strings are both accepted, anything else is a field
// error.
type Input struct {
	StationID     *string `json:"station_id,omitempty"`
	ConnectorType *string `json:"connector_type,omitempty"`
	PowerKW       *Number `json:"power_kw"`
	PricePerKWh   *Number `json:"price_per_kwh"`
	Quantity      *int    `json:"quantity,omitempty"`
	Description   *string `json:"description,omitempty"`
}

type Validated struct {
	StationID     string
	ConnectorType models.ConnectorType
	PowerKW       decimal.Decimal
	PricePerKWh   decimal.Decimal
	Quantity      int
	Description   *string
}

func (in Input) Validate() (Validated, apperr.FieldErrors) {
	var fe apperr.FieldErrors
	v := Validated{ConnectorType: models.ConnectorNone, Quantity: 1}

	if in.PowerKW == nil {
		fe.Add("power_kw", apperr.Required)
	} else if d, ok := in.PowerKW.Decimal(&fe, "power_kw"); ok {
		checkDecimal(&fe, "power_kw", d, true)
		v.PowerKW = d
	}
	if in.PricePerKWh == nil {
		fe.Add("price_per_kwh", apperr.Required)
	} else if d, ok := in.PricePerKWh.Decimal(&fe, "price_per_kwh"); ok {
		checkDecimal(&fe, "price_per_kwh", d, false)
		v.PricePerKWh = d
	}
	if in.ConnectorType != nil && *in.ConnectorType != "" {
		ct := models.ConnectorType(strings.ToLower(strings.TrimSpace(*in.ConnectorType)))
		if !ct.Valid() {
			fe.Add("connector_type", apperr.InvalidChoice)
		}
		v.ConnectorType = ct
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			fe.Add("quantity", apperr.MustBePositive)
		}
		v.Quantity = *in.Quantity
	}
	if in.Description != nil {
		if utf8.RuneCountInString(*in.Description) > maxDescription {
			fe.Add("description", apperr.TooLong)
		}
		v.Description = in.Description
	}
	if in.StationID != nil {
		v.StationID = strings.TrimSpace(*in.StationID)
	}
	if len(fe) > 0 {
		return Validated{}, fe
	}
	return v, nil
}

// checkDecimal enforces a 6 digit / 2 decimal place column.
func checkDecimal(fe *apperr.FieldErrors, field string, d decimal.Decimal, positive bool) {
	switch {
	case d.Sign() < 0:
		fe.Add(field, apperr.MustBeNonNeg)
		return
	case positive && d.Sign() == 0:
		fe.Add(field, apperr.MustBePositive)
		return
	}
	if !d.Equal(d.Round(2)) || d.GreaterThanOrEqual(maxDecimal) {
		fe.Add(field, apperr.TooManyDigits)
	}
}

// ResolveStation picks the station a connector is created under. An explicit
// payload value wins over the route parameter.
func ResolveStation(explicit, route string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if route = strings.TrimSpace(route); route != "" {
		return route, nil
	}
	return "", ErrNoStation
}

// Patch lists the editable fields. QR fields are deliberately absent so a
// printed code stays valid for the life of the connector.
type Patch struct {
	ConnectorType     *string `json:"connector_type,omitempty"`
	PowerKW           *Number `json:"power_kw,omitempty"`
	PricePerKWh       *Number `json:"price_per_kwh,omitempty"`
	Quantity          *int    `json:"quantity,omitempty"`
	AvailableQuantity *int    `json:"available_quantity,omitempty"`
	IsAvailable       *bool   `json:"is_available,omitempty"`
	Status            *string `json:"status,omitempty"`
	Description       *string `json:"description,omitempty"`
}

// Apply validates the patch and writes it onto c. c is untouched on error.
func (p Patch) Apply(c *models.ChargingConnector) apperr.FieldErrors {
	var fe apperr.FieldErrors
	next := *c

	if p.ConnectorType != nil {
		ct := models.ConnectorType(strings.ToLower(strings.TrimSpace(*p.ConnectorType)))
		if !ct.Valid() {
			fe.Add("connector_type", apperr.InvalidChoice)
		}
		next.ConnectorType = ct
	}
	if p.PowerKW != nil {
		if d, ok := p.PowerKW.Decimal(&fe, "power_kw"); ok {
			checkDecimal(&fe, "power_kw", d, true)
			next.PowerKW = d.InexactFloat64()
		}
	}
	if p.PricePerKWh != nil {
		if d, ok := p.PricePerKWh.Decimal(&fe, "price_per_kwh"); ok {
			checkDecimal(&fe, "price_per_kwh", d, false)
			next.PricePerKWh = d.InexactFloat64()
		}
	}
	if p.Quantity != nil {
		if *p.Quantity < 1 {
			fe.Add("quantity", apperr.MustBePositive)
		}
		next.Quantity = *p.Quantity
	}
	if p.AvailableQuantity != nil {
		if *p.AvailableQuantity < 0 {
			fe.Add("available_quantity", apperr.MustBeNonNeg)
		}
		next.AvailableQuantity = *p.AvailableQuantity
	}
	if next.AvailableQuantity > next.Quantity {
		next.AvailableQuantity = next.Quantity
	}
	if p.IsAvailable != nil {
		next.IsAvailable = *p.IsAvailable
	}
	if p.Status != nil {
		st := models.ConnectorStatus(*p.Status)
		if !st.Valid() {
			fe.Add("status", apperr.InvalidChoice)
		}
		next.Status = st
	}
	if p.Description != nil {
		if utf8.RuneCountInString(*p.Description) > maxDescription {
			fe.Add("description", apperr.TooLong)
		}
		next.Description = p.Description
	}
	if len(fe) > 0 {
		return fe
	}
	*c = next
	return nil
}
