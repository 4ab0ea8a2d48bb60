package service

import (
	"context"
	"time"

	"tipmap-service/internal/consensus"
	"tipmap-service/internal/model"
	"tipmap-service/internal/repository"
	"tipmap-service/prometheus"

	"go.uber.org/zap"
)

// StatsService serves the consensus view per business. The view is derived
// from the full report set at read time, so every read reflects all reports
// committed before it; there is no stale cache.
type StatsService struct {
	businesses repository.BusinessRepository
	reports    repository.ReportRepository
	log        *zap.Logger
}

func NewStatsService(businesses repository.BusinessRepository, reports repository.ReportRepository, log *zap.Logger) *StatsService {
	return &StatsService{businesses: businesses, reports: reports, log: log}
}

// Get returns the consensus view for one business.
func (s *StatsService) Get(ctx context.Context, id string) (*model.BusinessStats, error) {
	business, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.ListForConsensus(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := buildStats(business, reports)
	return &stats, nil
}

// List returns a page of businesses with their consensus views joined in.
func (s *StatsService) List(ctx context.Context, filter repository.BusinessFilter, page, pageSize int) ([]model.BusinessStats, int64, error) {
	businesses, total, err := s.businesses.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	stats, err := s.statsFor(ctx, businesses)
	if err != nil {
		return nil, 0, err
	}
	return stats, total, nil
}

// Nearby returns consensus views for businesses within radiusMeters of the
// given point. Used for the initial map viewport.
func (s *StatsService) Nearby(ctx context.Context, lat, lng, radiusMeters float64) ([]model.BusinessStats, error) {
	businesses, err := s.businesses.Nearby(ctx, lat, lng, radiusMeters)
	if err != nil {
		return nil, err
	}
	return s.statsFor(ctx, businesses)
}

// ReportHistory returns one page of a business's reports, newest first.
func (s *StatsService) ReportHistory(ctx context.Context, businessID string, page, pageSize int) ([]*model.Report, int64, error) {
	if _, err := s.businesses.GetByID(ctx, businessID); err != nil {
		return nil, 0, err
	}
	return s.reports.ListByBusiness(ctx, businessID, page, pageSize)
}

// statsFor aggregates a batch of businesses with one report query.
func (s *StatsService) statsFor(ctx context.Context, businesses []*model.Business) ([]model.BusinessStats, error) {
	ids := make([]string, len(businesses))
	for i, b := range businesses {
		ids[i] = b.ID
	}
	grouped, err := s.reports.ListForConsensusBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats := make([]model.BusinessStats, len(businesses))
	for i, b := range businesses {
		stats[i] = buildStats(b, grouped[b.ID])
	}
	return stats, nil
}

func buildStats(business *model.Business, reports []model.Report) model.BusinessStats {
	defer prometheus.TrackConsensusCompute()(time.Now())

	c := consensus.Aggregate(reports)
	return model.BusinessStats{
		ID:        business.ID,
		Name:      business.Name,
		Address:   business.Address,
		City:      business.City,
		State:     business.State,
		ZipCode:   business.ZipCode,
		Country:   business.Country,
		Latitude:  business.Latitude,
		Longitude: business.Longitude,
		CreatedAt: business.CreatedAt,
		UpdatedAt: business.UpdatedAt,

		ComputedTipPractice:             c.TipPractice,
		ComputedTipsGoToStaff:           c.TipsGoToStaff,
		ComputedSuggestedTips:           c.SuggestedTips,
		ComputedServiceChargePercentage: c.ServiceChargePercentage,
		ReportCount:                     c.ReportCount,
	}
}
