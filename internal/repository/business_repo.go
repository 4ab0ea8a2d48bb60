package repository

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"tipmap-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested business does not exist.
var ErrNotFound = errors.New("repository: not found")

// BusinessRepository persists canonical business records keyed by identity hash.
type BusinessRepository interface {
	// Upsert inserts the business or, when the hash already exists, updates
	// the stored display fields with the non-empty incoming values. It
	// reports whether a new row was created and always leaves b.ID set to
	// the canonical row's id.
	Upsert(ctx context.Context, b *model.Business) (created bool, err error)
	GetByID(ctx context.Context, id string) (*model.Business, error)
	List(ctx context.Context, filter BusinessFilter, page, pageSize int) ([]*model.Business, int64, error)
	Nearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*model.Business, error)
}

// BusinessFilter narrows the business listing.
type BusinessFilter struct {
	// NameQuery is a case-insensitive substring match on the display name.
	NameQuery string
	// TipPractice keeps only businesses with at least one report in the category.
	TipPractice model.TipPractice
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Upsert(ctx context.Context, b *model.Business) (bool, error) {
	// Existence check feeds the created/reused outcome only; correctness
	// under concurrent first submissions rests on the atomic upsert below.
	var existing model.Business
	err := r.db.WithContext(ctx).Select("id").Where("hash = ?", b.Hash).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	created := errors.Is(err, gorm.ErrRecordNotFound)

	// Only non-empty incoming values may replace stored data: a sparse
	// resubmission must never blank out richer fields from earlier ones.
	assignments := map[string]interface{}{}
	for column, value := range map[string]string{
		"name":     b.Name,
		"address":  b.Address,
		"city":     b.City,
		"state":    b.State,
		"zip_code": b.ZipCode,
		"country":  b.Country,
	} {
		if strings.TrimSpace(value) != "" {
			assignments[column] = value
		}
	}
	if b.Latitude != nil && b.Longitude != nil {
		assignments["latitude"] = *b.Latitude
		assignments["longitude"] = *b.Longitude
	}
	// The update timestamp moves whenever stored fields are refreshed.
	if len(assignments) > 0 {
		assignments["updated_at"] = time.Now()
	}

	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoNothing: len(assignments) == 0,
	}
	if len(assignments) > 0 {
		conflict.DoUpdates = clause.Assignments(assignments)
	}
	if err := r.db.WithContext(ctx).Clauses(conflict).Create(b).Error; err != nil {
		return false, err
	}

	// On conflict the generated ID from BeforeCreate is not the canonical
	// row's id; reload by hash to get the stored row.
	var canonical model.Business
	if err := r.db.WithContext(ctx).Where("hash = ?", b.Hash).First(&canonical).Error; err != nil {
		return false, err
	}
	*b = canonical
	return created, nil
}

func (r *businessRepository) GetByID(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *businessRepository) List(ctx context.Context, filter BusinessFilter, page, pageSize int) ([]*model.Business, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&model.Business{})
	if filter.NameQuery != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.NameQuery)+"%")
	}
	if filter.TipPractice != "" {
		db = db.Where("EXISTS (SELECT 1 FROM reports WHERE reports.business_id = businesses.id AND reports.tip_practice = ?)", filter.TipPractice)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.Business
	if err := db.Order("name ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// metersPerDegreeLat is close enough for the bounding-box prefilter; the
// haversine pass below does the precise cut.
const metersPerDegreeLat = 111320.0

func (r *businessRepository) Nearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*model.Business, error) {
	latDelta := radiusMeters / metersPerDegreeLat
	lngDelta := latDelta
	if cos := math.Cos(lat * math.Pi / 180); cos > 0.01 {
		lngDelta = latDelta / cos
	}

	var candidates []*model.Business
	err := r.db.WithContext(ctx).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
		Where("longitude BETWEEN ? AND ?", lng-lngDelta, lng+lngDelta).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	result := make([]*model.Business, 0, len(candidates))
	for _, b := range candidates {
		if haversineMeters(lat, lng, *b.Latitude, *b.Longitude) <= radiusMeters {
			result = append(result, b)
		}
	}
	return result, nil
}

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371000.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
