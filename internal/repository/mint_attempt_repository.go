package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"boundless-travel/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound record does not exist
var ErrNotFound = errors.New("record not found")

// MintAttemptRepository defines the interface for mint attempt data access
type MintAttemptRepository interface {
	Create(ctx context.Context, attempt *models.MintAttempt) error
	Update(ctx context.Context, attempt *models.MintAttempt) error
	GetByID(ctx context.Context, id string) (*models.MintAttempt, error)
	FindByAccount(ctx context.Context, account string, limit int) ([]*models.MintAttempt, error)
	FindByOutcome(ctx context.Context, outcome models.MintOutcome) ([]*models.MintAttempt, error)
}

// mintAttemptRepository implements MintAttemptRepository on gorm
type mintAttemptRepository struct {
	db *gorm.DB
}

// NewMintAttemptRepository creates a gorm backed repository
func NewMintAttemptRepository(db *gorm.DB) MintAttemptRepository {
	return &mintAttemptRepository{db: db}
}

func (r *mintAttemptRepository) Create(ctx context.Context, attempt *models.MintAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *mintAttemptRepository) Update(ctx context.Context, attempt *models.MintAttempt) error {
	return r.db.WithContext(ctx).Save(attempt).Error
}

func (r *mintAttemptRepository) GetByID(ctx context.Context, id string) (*models.MintAttempt, error) {
	var attempt models.MintAttempt
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindByAccount newest first
func (r *mintAttemptRepository) FindByAccount(ctx context.Context, account string, limit int) ([]*models.MintAttempt, error) {
	var attempts []*models.MintAttempt
	q := r.db.WithContext(ctx).Where("account = ?", account).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&attempts).Error
	return attempts, err
}

func (r *mintAttemptRepository) FindByOutcome(ctx context.Context, outcome models.MintOutcome) ([]*models.MintAttempt, error) {
	var attempts []*models.MintAttempt
	err := r.db.WithContext(ctx).Where("outcome = ?", outcome).Order("created_at ASC").Find(&attempts).Error
	return attempts, err
}

// memoryMintAttemptRepository keeps attempts in process memory when no database is configured
type memoryMintAttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string]*models.MintAttempt
}

// NewMemoryMintAttemptRepository creates an in-memory repository
func NewMemoryMintAttemptRepository() MintAttemptRepository {
	return &memoryMintAttemptRepository{attempts: make(map[string]*models.MintAttempt)}
}

func (r *memoryMintAttemptRepository) Create(_ context.Context, attempt *models.MintAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.attempts[attempt.ID]; exists {
		return errors.New("duplicate mint attempt id")
	}
	r.attempts[attempt.ID] = attempt.Clone()
	return nil
}

func (r *memoryMintAttemptRepository) Update(_ context.Context, attempt *models.MintAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.ID] = attempt.Clone()
	return nil
}

func (r *memoryMintAttemptRepository) GetByID(_ context.Context, id string) (*models.MintAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (r *memoryMintAttemptRepository) FindByAccount(_ context.Context, account string, limit int) ([]*models.MintAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.MintAttempt
	for _, a := range r.attempts {
		if a.Account == account {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryMintAttemptRepository) FindByOutcome(_ context.Context, outcome models.MintOutcome) ([]*models.MintAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.MintAttempt
	for _, a := range r.attempts {
		if a.Outcome == outcome {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
