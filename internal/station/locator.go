package station

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

const (
	EarthRadiusKM   = 6371.0
	kmPerDegree     = 111.0
	DefaultRadiusKM = 5.0
	minSearchLen    = 2
	mapCachePrefix  = "stations:map:"
)

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Box is a lat/lng rectangle, inclusive on every edge.
type Box struct {
	North, South, East, West float64
}

// Around approximates radiusKM around a point, one degree of latitude being
// 111 km and one of longitude 111*cos(lat) km.
func Around(lat, lng, radiusKM float64) Box {
	dLat := radiusKM / kmPerDegree
	dLng := radiusKM / (kmPerDegree * math.Cos(lat*math.Pi/180))
	return Box{North: lat + dLat, South: lat - dLat, East: lng + dLng, West: lng - dLng}
}

// MapFilter narrows the public map listing. Zero values mean no filter.
type MapFilter struct {
	Bounds        *Box
	ConnectorType models.ConnectorType
	MinPowerKW    *float64
	AvailableOnly bool
}

// ParseMapFilter reads north/south/east/west, connector_type, min_power and
// available_only. Bounds apply only when all four edges parse; an
// unparsable min_power is ignored.
func ParseMapFilter(q url.Values) MapFilter {
	var f MapFilter
	edges := make([]float64, 0, 4)
	for _, k := range []string{"north", "south", "east", "west"} {
		v, err := strconv.ParseFloat(q.Get(k), 64)
		if err != nil {
			break
		}
		edges = append(edges, v)
	}
	if len(edges) == 4 {
		f.Bounds = &Box{North: edges[0], South: edges[1], East: edges[2], West: edges[3]}
	}
	f.ConnectorType = models.ConnectorType(strings.TrimSpace(q.Get("connector_type")))
	if v, err := strconv.ParseFloat(q.Get("min_power"), 64); err == nil {
		f.MinPowerKW = &v
	}
	f.AvailableOnly = q.Get("available_only") == "true"
	return f
}

func (f MapFilter) key() string {
	var b strings.Builder
	if f.Bounds != nil {
		fmt.Fprintf(&b, "b=%g,%g,%g,%g;", f.Bounds.North, f.Bounds.South, f.Bounds.East, f.Bounds.West)
	}
	fmt.Fprintf(&b, "t=%s;", f.ConnectorType)
	if f.MinPowerKW != nil {
		fmt.Fprintf(&b, "p=%g;", *f.MinPowerKW)
	}
	fmt.Fprintf(&b, "a=%t", f.AvailableOnly)
	return mapCachePrefix + b.String()
}

// ParseNearby reads lat, lng and radius (km, default 5). ok is false when
// lat or lng is missing or any value fails to parse.
func ParseNearby(q url.Values) (lat, lng, radiusKM float64, ok bool) {
	if q.Get("lat") == "" || q.Get("lng") == "" {
		return 0, 0, 0, false
	}
	var err error
	if lat, err = strconv.ParseFloat(q.Get("lat"), 64); err != nil {
		return 0, 0, 0, false
	}
	if lng, err = strconv.ParseFloat(q.Get("lng"), 64); err != nil {
		return 0, 0, 0, false
	}
	radiusKM = DefaultRadiusKM
	if r := q.Get("radius"); r != "" {
		if radiusKM, err = strconv.ParseFloat(r, 64); err != nil {
			return 0, 0, 0, false
		}
	}
	return lat, lng, radiusKM, true
}

// MapStation is the marker payload for the map and list views.
type MapStation struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Latitude            *float64               `json:"latitude"`
	Longitude           *float64               `json:"longitude"`
	Rating              float64                `json:"rating"`
	Status              models.StationStatus   `json:"status"`
	AvailableConnectors int                    `json:"available_connectors"`
	TotalConnectors     int                    `json:"total_connectors"`
	OwnerName           string                 `json:"owner_name"`
	IsVerifiedOwner     bool                   `json:"is_verified_owner"`
	ConnectorTypes      []models.ConnectorType `json:"connector_types"`
	MarkerColor         string                 `json:"marker_color"`
	AvailabilityStatus  string                 `json:"availability_status"`
	City                string                 `json:"city"`
	Country             string                 `json:"country"`
	DistanceKM          *float64               `json:"distance_km,omitempty"`
}

// MarkerColor is red for closed, maintenance or fully busy stations, yellow
// when partly busy and green otherwise.
func MarkerColor(st models.ChargingStation) string {
	switch {
	case st.Status == models.StationClosed || st.Status == models.StationMaintenance:
		return "red"
	case st.AvailableConnectors == 0:
		return "red"
	case st.AvailableConnectors < st.TotalConnectors:
		return "yellow"
	}
	return "green"
}

func AvailabilityStatus(st models.ChargingStation) string {
	switch {
	case st.Status == models.StationClosed:
		return "Closed"
	case st.Status == models.StationMaintenance:
		return "Under Maintenance"
	case st.AvailableConnectors == 0:
		return "All Connectors Busy"
	case st.AvailableConnectors < st.TotalConnectors:
		return fmt.Sprintf("%d/%d Available", st.AvailableConnectors, st.TotalConnectors)
	}
	return "Available"
}

func connectorTypes(conns []models.ChargingConnector) []models.ConnectorType {
	seen := make(map[models.ConnectorType]bool, len(conns))
	out := []models.ConnectorType{}
	for _, c := range conns {
		if !seen[c.ConnectorType] {
			seen[c.ConnectorType] = true
			out = append(out, c.ConnectorType)
		}
	}
	return out
}

// ToMap flattens a station with its Owner and Connectors preloaded.
func ToMap(st models.ChargingStation) MapStation {
	m := MapStation{
		ID: st.ID, Name: st.Name, Latitude: st.Latitude, Longitude: st.Longitude,
		Rating: st.Rating, Status: st.Status,
		AvailableConnectors: st.AvailableConnectors, TotalConnectors: st.TotalConnectors,
		ConnectorTypes:     connectorTypes(st.Connectors),
		MarkerColor:        MarkerColor(st),
		AvailabilityStatus: AvailabilityStatus(st),
		City:               st.City, Country: st.Country,
	}
	if st.Owner != nil {
		m.OwnerName = st.Owner.CompanyName
		m.IsVerifiedOwner = st.Owner.VerificationStatus == models.VerificationVerified
	}
	return m
}

// Detail is the public station page: the station, its connectors and owner.
type Detail struct {
	models.ChargingStation
	Connectors      []models.ChargingConnector `json:"connectors"`
	OwnerName       string                     `json:"owner_name"`
	IsVerifiedOwner bool                       `json:"is_verified_owner"`
}

// Nearest keeps stations with coordinates within radiusKM of the point and
// sorts them by distance, closest first.
func Nearest(rows []models.ChargingStation, lat, lng, radiusKM float64) []MapStation {
	out := []MapStation{}
	for _, st := range rows {
		if st.Latitude == nil || st.Longitude == nil {
			continue
		}
		d := Haversine(lat, lng, *st.Latitude, *st.Longitude)
		if d > radiusKM {
			continue
		}
		m := ToMap(st)
		m.DistanceKM = &d
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKM < *out[j].DistanceKM })
	return out
}

// Repository reads active, public stations with Owner and Connectors
// preloaded.
type Repository interface {
	ListPublic(ctx context.Context, f MapFilter) ([]models.ChargingStation, error)
	InBox(ctx context.Context, b Box) ([]models.ChargingStation, error)
	Search(ctx context.Context, term string) ([]models.ChargingStation, error)
	PublicGet(ctx context.Context, id string) (*models.ChargingStation, error)
}

// ListCache stores rendered map listings.
type ListCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type Locator struct {
	repo  Repository
	cache ListCache
	ttl   time.Duration
	lg    *zap.SugaredLogger
}

// NewLocator wires the public queries. cache may be nil.
func NewLocator(repo Repository, cache ListCache, ttl time.Duration, lg *zap.SugaredLogger) *Locator {
	return &Locator{repo: repo, cache: cache, ttl: ttl, lg: lg}
}

// Map lists active, public stations with coordinates for the map.
func (l *Locator) Map(ctx context.Context, f MapFilter) ([]MapStation, error) {
	key := f.key()
	if l.cache != nil {
		var cached []MapStation
		if hit, err := l.cache.Get(ctx, key, &cached); err != nil {
			l.lg.Warnw("station map cache read failed", "key", key, "error", err)
		} else if hit {
			return cached, nil
		}
	}
	rows, err := l.repo.ListPublic(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list public stations: %w", err)
	}
	out := make([]MapStation, 0, len(rows))
	for _, st := range rows {
		out = append(out, ToMap(st))
	}
	if l.cache != nil {
		if err := l.cache.Set(ctx, key, out, l.ttl); err != nil {
			l.lg.Warnw("station map cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

// Invalidate drops cached map listings after an owner edit.
func (l *Locator) Invalidate(ctx context.Context) {
	if l == nil || l.cache == nil {
		return
	}
	if err := l.cache.DeletePrefix(ctx, mapCachePrefix); err != nil {
		l.lg.Warnw("station map cache invalidation failed", "error", err)
	}
}

// Nearby returns stations within radiusKM, closest first. The bounding box
// pre-filter runs in the database.
func (l *Locator) Nearby(ctx context.Context, lat, lng, radiusKM float64) ([]MapStation, error) {
	if radiusKM <= 0 {
		return []MapStation{}, nil
	}
	rows, err := l.repo.InBox(ctx, Around(lat, lng, radiusKM))
	if err != nil {
		return nil, fmt.Errorf("nearby stations: %w", err)
	}
	return Nearest(rows, lat, lng, radiusKM), nil
}

// Search matches name, address, city, state or zip code, ignoring case.
// Terms shorter than two characters match nothing.
func (l *Locator) Search(ctx context.Context, term string) ([]MapStation, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchLen {
		return []MapStation{}, nil
	}
	rows, err := l.repo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search stations: %w", err)
	}
	out := make([]MapStation, 0, len(rows))
	for _, st := range rows {
		out = append(out, ToMap(st))
	}
	return out, nil
}

// Detail returns an active, public station.
func (l *Locator) Detail(ctx context.Context, id string) (*Detail, error) {
	st, err := l.repo.PublicGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if !st.IsActive || !st.IsPublic {
		return nil, apperr.NotFound("station not found")
	}
	d := &Detail{ChargingStation: *st, Connectors: st.Connectors}
	if d.Connectors == nil {
		d.Connectors = []models.ChargingConnector{}
	}
	if st.Owner != nil {
		d.OwnerName = st.Owner.CompanyName
		d.IsVerifiedOwner = st.Owner.VerificationStatus == models.VerificationVerified
	}
	return d, nil
}
