package station

import (
	"context"
	"errors"
	"math"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

func fp(v float64) *float64 { return &v }

func TestHaversine(t *testing.T) {
	if d := Haversine(9.03, 38.74, 9.03, 38.74); d != 0 {
		t.Errorf("same point = %v", d)
	}
	// one degree of longitude on the equator
	want := EarthRadiusKM * math.Pi / 180
	if d := Haversine(0, 0, 0, 1); math.Abs(d-want) > 1e-9 {
		t.Errorf("equator degree = %v, want %v", d, want)
	}
	if a, b := Haversine(9, 38, 9.5, 38.5), Haversine(9.5, 38.5, 9, 38); math.Abs(a-b) > 1e-9 {
		t.Errorf("not symmetric: %v vs %v", a, b)
	}
}

func TestAround(t *testing.T) {
	b := Around(0, 10, 111)
	if math.Abs(b.North-1) > 1e-9 || math.Abs(b.South+1) > 1e-9 {
		t.Errorf("lat range = %+v", b)
	}
	if math.Abs(b.East-11) > 1e-9 || math.Abs(b.West-9) > 1e-9 {
		t.Errorf("lng range = %+v", b)
	}
	// longitude degrees shrink away from the equator
	if hi := Around(60, 0, 111); hi.East-hi.West <= 2 {
		t.Errorf("lng range at 60N = %v", hi.East-hi.West)
	}
}

func TestParseMapFilter(t *testing.T) {
	f := ParseMapFilter(url.Values{
		"north": {"10"}, "south": {"8"}, "east": {"40"}, "west": {"38"},
		"connector_type": {"ccs2"}, "min_power": {"50"}, "available_only": {"true"},
	})
	if f.Bounds == nil || *f.Bounds != (Box{North: 10, South: 8, East: 40, West: 38}) {
		t.Errorf("bounds = %+v", f.Bounds)
	}
	if f.ConnectorType != models.ConnectorCCS2 || f.MinPowerKW == nil || *f.MinPowerKW != 50 || !f.AvailableOnly {
		t.Errorf("filter = %+v", f)
	}

	partial := ParseMapFilter(url.Values{"north": {"10"}, "south": {"8"}, "east": {"x"}, "west": {"38"}, "min_power": {"fast"}, "available_only": {"1"}})
	if partial.Bounds != nil || partial.MinPowerKW != nil || partial.AvailableOnly {
		t.Errorf("partial filter = %+v", partial)
	}
	if ParseMapFilter(url.Values{}).key() == f.key() {
		t.Error("different filters share a cache key")
	}
}

func TestParseNearby(t *testing.T) {
	cases := []struct {
		name   string
		q      url.Values
		ok     bool
		radius float64
	}{
		{"default radius", url.Values{"lat": {"9.03"}, "lng": {"38.74"}}, true, DefaultRadiusKM},
		{"explicit radius", url.Values{"lat": {"9.03"}, "lng": {"38.74"}, "radius": {"12.5"}}, true, 12.5},
		{"missing lng", url.Values{"lat": {"9.03"}}, false, 0},
		{"bad lat", url.Values{"lat": {"north"}, "lng": {"38.74"}}, false, 0},
		{"bad radius", url.Values{"lat": {"9"}, "lng": {"38"}, "radius": {"far"}}, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, r, ok := ParseNearby(tc.q)
			if ok != tc.ok || r != tc.radius {
				t.Errorf("got radius=%v ok=%v", r, ok)
			}
		})
	}
}

func TestMarkerAndAvailability(t *testing.T) {
	cases := []struct {
		name        string
		st          models.ChargingStation
		color, text string
	}{
		{"closed", models.ChargingStation{Status: models.StationClosed, AvailableConnectors: 2, TotalConnectors: 2}, "red", "Closed"},
		{"maintenance", models.ChargingStation{Status: models.StationMaintenance, AvailableConnectors: 2, TotalConnectors: 2}, "red", "Under Maintenance"},
		{"busy", models.ChargingStation{Status: models.StationOperational, AvailableConnectors: 0, TotalConnectors: 3}, "red", "All Connectors Busy"},
		{"partial", models.ChargingStation{Status: models.StationOperational, AvailableConnectors: 1, TotalConnectors: 3}, "yellow", "1/3 Available"},
		{"free", models.ChargingStation{Status: models.StationOperational, AvailableConnectors: 3, TotalConnectors: 3}, "green", "Available"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MarkerColor(tc.st); got != tc.color {
				t.Errorf("color = %s", got)
			}
			if got := AvailabilityStatus(tc.st); got != tc.text {
				t.Errorf("status = %s", got)
			}
		})
	}
}

func TestToMapFlattensOwnerAndConnectors(t *testing.T) {
	st := models.ChargingStation{
		ID: "s1", Name: "Bole", Status: models.StationOperational, AvailableConnectors: 1, TotalConnectors: 2,
		Owner: &models.StationOwner{CompanyName: "Volt PLC", VerificationStatus: models.VerificationVerified},
		Connectors: []models.ChargingConnector{
			{ConnectorType: models.ConnectorType2}, {ConnectorType: models.ConnectorCCS2}, {ConnectorType: models.ConnectorType2},
		},
	}
	m := ToMap(st)
	if m.OwnerName != "Volt PLC" || !m.IsVerifiedOwner {
		t.Errorf("owner = %q %v", m.OwnerName, m.IsVerifiedOwner)
	}
	if len(m.ConnectorTypes) != 2 || m.ConnectorTypes[0] != models.ConnectorType2 || m.ConnectorTypes[1] != models.ConnectorCCS2 {
		t.Errorf("connector types = %v", m.ConnectorTypes)
	}
	if m.MarkerColor != "yellow" || m.DistanceKM != nil {
		t.Errorf("map = %+v", m)
	}
}

func TestNearestFiltersAndSorts(t *testing.T) {
	rows := []models.ChargingStation{
		{ID: "far", Latitude: fp(9.10), Longitude: fp(38.74)},
		{ID: "near", Latitude: fp(9.031), Longitude: fp(38.741)},
		{ID: "corner", Latitude: fp(9.06), Longitude: fp(38.77)},
		{ID: "nocoords"},
	}
	got := Nearest(rows, 9.03, 38.74, 5)
	if len(got) != 2 || got[0].ID != "near" || got[1].ID != "corner" {
		ids := []string{}
		for _, m := range got {
			ids = append(ids, m.ID)
		}
		t.Fatalf("ids = %v", ids)
	}
	if *got[0].DistanceKM > *got[1].DistanceKM || *got[1].DistanceKM > 5 {
		t.Errorf("distances = %v, %v", *got[0].DistanceKM, *got[1].DistanceKM)
	}
}

type fakeRepo struct {
	rows      []models.ChargingStation
	listCalls int
	box       *Box
	term      string
}

func (f *fakeRepo) ListPublic(context.Context, MapFilter) ([]models.ChargingStation, error) {
	f.listCalls++
	return f.rows, nil
}

func (f *fakeRepo) InBox(_ context.Context, b Box) ([]models.ChargingStation, error) {
	f.box = &b
	return f.rows, nil
}

func (f *fakeRepo) Search(_ context.Context, term string) ([]models.ChargingStation, error) {
	f.term = term
	return f.rows, nil
}

func (f *fakeRepo) PublicGet(_ context.Context, id string) (*models.ChargingStation, error) {
	for _, st := range f.rows {
		if st.ID == id {
			cp := st
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("station not found")
}

type memCache struct {
	data    map[string]any
	deleted []string
}

func (m *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	*(dst.(*[]MapStation)) = v.([]MapStation)
	return true, nil
}

func (m *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	m.data[key] = v
	return nil
}

func (m *memCache) DeletePrefix(_ context.Context, prefix string) error {
	m.deleted = append(m.deleted, prefix)
	m.data = map[string]any{}
	return nil
}

var nop = zap.NewNop().Sugar()

func TestLocatorMapCachesListing(t *testing.T) {
	repo := &fakeRepo{rows: []models.ChargingStation{{ID: "s1", Latitude: fp(9), Longitude: fp(38)}}}
	c := &memCache{data: map[string]any{}}
	loc := NewLocator(repo, c, time.Minute, nop)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := loc.Map(ctx, MapFilter{})
		if err != nil || len(got) != 1 {
			t.Fatalf("Map: %v %v", got, err)
		}
	}
	if repo.listCalls != 1 {
		t.Errorf("repository hit %d times", repo.listCalls)
	}
	loc.Invalidate(ctx)
	if _, err := loc.Map(ctx, MapFilter{}); err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != 2 || len(c.deleted) != 1 || c.deleted[0] != mapCachePrefix {
		t.Errorf("after invalidate: calls=%d deleted=%v", repo.listCalls, c.deleted)
	}
}

func TestLocatorNearbyUsesBoundingBox(t *testing.T) {
	repo := &fakeRepo{rows: []models.ChargingStation{{ID: "s1", Latitude: fp(9.031), Longitude: fp(38.741)}}}
	loc := NewLocator(repo, nil, 0, nop)
	got, err := loc.Nearby(context.Background(), 9.03, 38.74, 5)
	if err != nil || len(got) != 1 {
		t.Fatalf("Nearby: %v %v", got, err)
	}
	if repo.box == nil || *repo.box != Around(9.03, 38.74, 5) {
		t.Errorf("box = %+v", repo.box)
	}
	if got, _ := loc.Nearby(context.Background(), 9, 38, 0); len(got) != 0 {
		t.Errorf("zero radius returned %v", got)
	}
}

func TestLocatorSearchNeedsTwoCharacters(t *testing.T) {
	repo := &fakeRepo{rows: []models.ChargingStation{{ID: "s1"}}}
	loc := NewLocator(repo, nil, 0, nop)
	got, err := loc.Search(context.Background(), " a ")
	if err != nil || len(got) != 0 || repo.term != "" {
		t.Errorf("short term: %v %v term=%q", got, err, repo.term)
	}
	got, err = loc.Search(context.Background(), " Bo ")
	if err != nil || len(got) != 1 || repo.term != "Bo" {
		t.Errorf("search: %v %v term=%q", got, err, repo.term)
	}
}

func TestLocatorDetailHidesPrivateStations(t *testing.T) {
	repo := &fakeRepo{rows: []models.ChargingStation{
		{ID: "pub", IsActive: true, IsPublic: true, Owner: &models.StationOwner{CompanyName: "Volt"}},
		{ID: "priv", IsActive: true, IsPublic: false},
		{ID: "off", IsActive: false, IsPublic: true},
	}}
	loc := NewLocator(repo, nil, 0, nop)
	d, err := loc.Detail(context.Background(), "pub")
	if err != nil || d.OwnerName != "Volt" || d.Connectors == nil {
		t.Fatalf("Detail: %+v %v", d, err)
	}
	for _, id := range []string{"priv", "off", "missing"} {
		if _, err := loc.Detail(context.Background(), id); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s: %v", id, err)
		}
	}
}
