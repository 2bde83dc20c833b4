package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
	"evmeri/internal/qr"
)

// StationLookup resolves a station the caller owns. Implementations return
// errors wrapping apperr.ErrNotFound or apperr.ErrForbidden.
type StationLookup interface {
	OwnedStation(ctx context.Context, stationID, userID string) (*models.ChargingStation, error)
}

// Repository persists connectors. Create and Update must be atomic with the
// station's connector counters.
type Repository interface {
	Create(ctx context.Context, c *models.ChargingConnector) error
	Get(ctx context.Context, stationID, id string) (*models.ChargingConnector, error)
	List(ctx context.Context, stationID string) ([]models.ChargingConnector, error)
	Update(ctx context.Context, c *models.ChargingConnector) error
	Delete(ctx context.Context, stationID, id string) error
	ByToken(ctx context.Context, token string) (*models.ChargingConnector, error)
}

type Service struct {
	stations StationLookup
	repo     Repository
	builder  *Builder
	lg       *zap.SugaredLogger
}

func NewService(stations StationLookup, repo Repository, builder *Builder, lg *zap.SugaredLogger) *Service {
	return &Service{stations: stations, repo: repo, builder: builder, lg: lg}
}

// Create validates in, builds the full record in memory and stores it in a
// single write. Nothing is persisted when any step fails.
func (s *Service) Create(ctx context.Context, userID, routeStationID string, in Input) (*models.ChargingConnector, error) {
	v, fe := in.Validate()
	if fe != nil {
		return nil, fe
	}
	stationID, err := ResolveStation(v.StationID, routeStationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stations.OwnedStation(ctx, stationID, userID); err != nil {
		return nil, err
	}
	rec, err := s.builder.Build(stationID, v)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("store connector: %w", err)
	}
	s.lg.Infow("connector created", "station_id", stationID, "connector_id", rec.ID, "type", rec.ConnectorType)
	return &rec, nil
}

func (s *Service) List(ctx context.Context, userID, stationID string) ([]models.ChargingConnector, error) {
	if _, err := s.stations.OwnedStation(ctx, stationID, userID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, stationID)
}

func (s *Service) Get(ctx context.Context, userID, stationID, id string) (*models.ChargingConnector, error) {
	if _, err := s.stations.OwnedStation(ctx, stationID, userID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, stationID, id)
}

// Update applies p without regenerating the QR token or image.
func (s *Service) Update(ctx context.Context, userID, stationID, id string, p Patch) (*models.ChargingConnector, error) {
	c, err := s.Get(ctx, userID, stationID, id)
	if err != nil {
		return nil, err
	}
	if fe := p.Apply(c); fe != nil {
		return nil, fe
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update connector: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, stationID, id string) error {
	if _, err := s.stations.OwnedStation(ctx, stationID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, stationID, id)
}

// ResolveToken finds the connector behind a scanned QR code.
func (s *Service) ResolveToken(ctx context.Context, token string) (*models.ChargingConnector, error) {
	if !qr.IsToken(token) {
		return nil, apperr.NotFound("connector not found")
	}
	return s.repo.ByToken(ctx, token)
}
