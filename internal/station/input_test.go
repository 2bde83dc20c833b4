package station

import (
	"strings"
	"testing"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

func sp(s string) *string { return &s }
func bp(b bool) *bool     { return &b }

func TestInputBuild(t *testing.T) {
	st, err := Input{Name: " Bole Hub ", Address: "Airport Rd", City: "Addis Ababa", Latitude: fp(9.0), Longitude: fp(38.8)}.Build("o1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if st.Name != "Bole Hub" || st.OwnerID != "o1" || st.Country != DefaultCountry {
		t.Errorf("station = %+v", st)
	}
	if !st.IsActive || !st.IsPublic || st.Status != models.StationOperational {
		t.Errorf("defaults = active:%v public:%v status:%s", st.IsActive, st.IsPublic, st.Status)
	}

	private, err := Input{Name: "n", Address: "a", City: "c", IsPublic: bp(false)}.Build("o1")
	if err != nil || private.IsPublic {
		t.Errorf("private station: %+v %v", private, err)
	}
}

func TestInputBuildRejections(t *testing.T) {
	cases := []struct {
		name   string
		in     Input
		fields []string
	}{
		{"empty", Input{}, []string{"name", "address", "city"}},
		{"latitude", Input{Name: "n", Address: "a", City: "c", Latitude: fp(91)}, []string{"latitude"}},
		{"longitude", Input{Name: "n", Address: "a", City: "c", Longitude: fp(-181)}, []string{"longitude"}},
		{"long name", Input{Name: strings.Repeat("x", 256), Address: "a", City: "c"}, []string{"name"}},
		{"long zip", Input{Name: "n", Address: "a", City: "c", ZipCode: strings.Repeat("1", 21)}, []string{"zip_code"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Build("o1")
			fe, ok := apperr.AsFieldErrors(err)
			if !ok {
				t.Fatalf("expected field errors, got %v", err)
			}
			for _, f := range tc.fields {
				if !fe.Has(f) {
					t.Errorf("missing %s in %v", f, fe)
				}
			}
		})
	}
}

func TestPatchApply(t *testing.T) {
	st := models.ChargingStation{Name: "Old", Address: "a", City: "c", Country: "Ethiopia", IsActive: true, IsPublic: true, Status: models.StationOperational}
	if err := (Patch{Name: sp("New"), Status: sp("maintenance"), IsPublic: bp(false)}).Apply(&st); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if st.Name != "New" || st.Status != models.StationMaintenance || st.IsPublic {
		t.Errorf("patched = %+v", st)
	}

	name, city := st.Name, st.City
	err := Patch{City: sp(" "), Status: sp("demolished")}.Apply(&st)
	fe, ok := apperr.AsFieldErrors(err)
	if !ok || !fe.Has("city") || !fe.Has("status") {
		t.Fatalf("expected city and status errors, got %v", err)
	}
	if st.Name != name || st.City != city || st.Status != models.StationMaintenance {
		t.Error("station modified on failed patch")
	}
}
