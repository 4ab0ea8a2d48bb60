package repository

import (
	"context"

	"tipmap-service/internal/model"

	"gorm.io/gorm"
)

// ReportRepository persists the append-only report history. Reports are
// never edited or deleted; creation order is total via (created_at, id).
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	// ListForConsensus returns every report for the business in creation
	// order, oldest first, as the aggregation rules expect.
	ListForConsensus(ctx context.Context, businessID string) ([]model.Report, error)
	// ListForConsensusBatch loads reports for several businesses in one
	// query, grouped by business id.
	ListForConsensusBatch(ctx context.Context, businessIDs []string) (map[string][]model.Report, error)
	// ListByBusiness returns a page of the report history, newest first,
	// with the total count.
	ListByBusiness(ctx context.Context, businessID string, page, pageSize int) ([]*model.Report, int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) ListForConsensus(ctx context.Context, businessID string) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at ASC, id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) ListForConsensusBatch(ctx context.Context, businessIDs []string) (map[string][]model.Report, error) {
	grouped := make(map[string][]model.Report, len(businessIDs))
	if len(businessIDs) == 0 {
		return grouped, nil
	}
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("business_id IN ?", businessIDs).
		Order("created_at ASC, id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	for _, report := range reports {
		grouped[report.BusinessID] = append(grouped[report.BusinessID], report)
	}
	return grouped, nil
}

func (r *reportRepository) ListByBusiness(ctx context.Context, businessID string, page, pageSize int) ([]*model.Report, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	db := r.db.WithContext(ctx).Model(&model.Report{}).Where("business_id = ?", businessID)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reports []*model.Report
	if err := db.Order("created_at DESC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}
