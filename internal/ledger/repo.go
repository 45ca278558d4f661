package ledger

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/kibanda-labs/cafeteria-pos/pkg/db/models"
)

// Repository manages persistence for recorded sales.
type Repository interface {
	Create(ctx context.Context, record *models.SaleRecord) error
	ListRecent(ctx context.Context, limit int) ([]models.SaleRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sale repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *models.SaleRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	if err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// memoryRepository keeps records in process memory. Used when the station
// runs without a durable ledger file.
type memoryRepository struct {
	mu      sync.Mutex
	records []models.SaleRecord
}

// NewMemoryRepository returns an in-memory sale repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(ctx context.Context, record *models.SaleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return nil
}

func (r *memoryRepository) ListRecent(ctx context.Context, limit int) ([]models.SaleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.SaleRecord, len(r.records))
	copy(out, r.records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
