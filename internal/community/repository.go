package community

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"smart-urban-planner/planner-backend/internal/apperrors"
)

// Repository stores community reports.
type Repository interface {
	Create(ctx context.Context, report *Report) error
	List(ctx context.Context) ([]Report, error)
	Get(ctx context.Context, id uuid.UUID) (*Report, error)
	Upvote(ctx context.Context, id uuid.UUID) (*Report, error)
}

type storedReport struct {
	report Report
	seq    uint64
}

type memoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*storedReport
	seq     uint64
}

// NewMemoryRepository creates an empty in-memory report store.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		records: make(map[uuid.UUID]*storedReport),
	}
}

func (r *memoryRepository) Create(ctx context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[report.ID]; exists {
		return fmt.Errorf("report %s already exists", report.ID)
	}

	r.seq++
	r.records[report.ID] = &storedReport{report: report.Clone(), seq: r.seq}
	return nil
}

// List returns all reports newest first, ties in reverse insertion order.
func (r *memoryRepository) List(ctx context.Context) ([]Report, error) {
	r.mu.RLock()
	stored := make([]storedReport, 0, len(r.records))
	for _, rec := range r.records {
		stored = append(stored, storedReport{report: rec.report.Clone(), seq: rec.seq})
	}
	r.mu.RUnlock()

	sort.Slice(stored, func(i, j int) bool {
		a, b := stored[i], stored[j]
		if !a.report.CreatedAt.Equal(b.report.CreatedAt) {
			return a.report.CreatedAt.After(b.report.CreatedAt)
		}
		return a.seq > b.seq
	})

	reports := make([]Report, len(stored))
	for i, rec := range stored {
		reports[i] = rec.report
	}
	return reports, nil
}

func (r *memoryRepository) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, apperrors.NotFound("report", id.String())
	}
	report := rec.report.Clone()
	return &report, nil
}

// Upvote adds exactly one vote under the write lock.
func (r *memoryRepository) Upvote(ctx context.Context, id uuid.UUID) (*Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, apperrors.NotFound("report", id.String())
	}
	rec.report.Upvotes++
	report := rec.report.Clone()
	return &report, nil
}
