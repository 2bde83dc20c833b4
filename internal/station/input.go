// Package station validates owner station payloads and answers the public
// map queries: bounded listings, nearby search, text search and reviews.
package station

import (
	"strings"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

const DefaultCountry = "Ethiopia"

type Input struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	ZipCode     string   `json:"zip_code"`
	Country     string   `json:"country"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description *string  `json:"description,omitempty"`
	IsPublic    *bool    `json:"is_public,omitempty"`
}

// Patch carries the owner-editable fields; nil means unchanged.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Address     *string  `json:"address,omitempty"`
	City        *string  `json:"city,omitempty"`
	State       *string  `json:"state,omitempty"`
	ZipCode     *string  `json:"zip_code,omitempty"`
	Country     *string  `json:"country,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description *string  `json:"description,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	IsPublic    *bool    `json:"is_public,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// Build validates in and returns a new active, operational station for ownerID.
func (in Input) Build(ownerID string) (models.ChargingStation, error) {
	st := models.ChargingStation{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		ZipCode:     strings.TrimSpace(in.ZipCode),
		Country:     strings.TrimSpace(in.Country),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Description: in.Description,
		IsActive:    true,
		IsPublic:    true,
		Status:      models.StationOperational,
	}
	if in.IsPublic != nil {
		st.IsPublic = *in.IsPublic
	}
	if st.Country == "" {
		st.Country = DefaultCountry
	}
	if fe := check(&st); fe != nil {
		return models.ChargingStation{}, fe
	}
	return st, nil
}

// Apply merges p into st and validates the result. st is left untouched on
// error.
func (p Patch) Apply(st *models.ChargingStation) error {
	next := *st
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&next.Name, p.Name)
	set(&next.Address, p.Address)
	set(&next.City, p.City)
	set(&next.State, p.State)
	set(&next.ZipCode, p.ZipCode)
	set(&next.Country, p.Country)
	if p.Latitude != nil {
		next.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		next.Longitude = p.Longitude
	}
	if p.Description != nil {
		next.Description = p.Description
	}
	if p.IsActive != nil {
		next.IsActive = *p.IsActive
	}
	if p.IsPublic != nil {
		next.IsPublic = *p.IsPublic
	}
	var fe apperr.FieldErrors
	if p.Status != nil {
		next.Status = models.StationStatus(*p.Status)
		if !next.Status.Valid() {
			fe.Add("status", apperr.InvalidChoice)
		}
	}
	if p.Country != nil && next.Country == "" {
		next.Country = DefaultCountry
	}
	fe = append(fe, check(&next)...)
	if fe != nil {
		return fe
	}
	*st = next
	return nil
}

func check(st *models.ChargingStation) apperr.FieldErrors {
	var fe apperr.FieldErrors
	required := []struct {
		field, v string
		max      int
	}{
		{"name", st.Name, 255},
		{"address", st.Address, 255},
		{"city", st.City, 100},
	}
	for _, r := range required {
		if r.v == "" {
			fe.Add(r.field, apperr.Required)
		} else if len([]rune(r.v)) > r.max {
			fe.Add(r.field, apperr.TooLong)
		}
	}
	if len([]rune(st.State)) > 100 {
		fe.Add("state", apperr.TooLong)
	}
	if len([]rune(st.ZipCode)) > 20 {
		fe.Add("zip_code", apperr.TooLong)
	}
	if st.Latitude != nil && (*st.Latitude < -90 || *st.Latitude > 90) {
		fe.Add("latitude", apperr.InvalidFormat)
	}
	if st.Longitude != nil && (*st.Longitude < -180 || *st.Longitude > 180) {
		fe.Add("longitude", apperr.InvalidFormat)
	}
	return fe
}
