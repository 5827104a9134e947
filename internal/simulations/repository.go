package simulations

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"smart-urban-planner/planner-backend/internal/apperrors"
)

// Repository stores simulation runs.
type Repository interface {
	Create(ctx context.Context, sim *Simulation) error
	List(ctx context.Context) ([]Simulation, error)
	Get(ctx context.Context, id uuid.UUID) (*Simulation, error)
}

type storedSimulation struct {
	sim Simulation
	seq uint64
}

// memoryRepository keeps runs in process memory for the process lifetime.
type memoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]storedSimulation
	seq     uint64
}

// NewMemoryRepository creates an empty in-memory simulation store.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		records: make(map[uuid.UUID]storedSimulation),
	}
}

func (r *memoryRepository) Create(ctx context.Context, sim *Simulation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[sim.ID]; exists {
		return fmt.Errorf("simulation %s already exists", sim.ID)
	}

	r.seq++
	r.records[sim.ID] = storedSimulation{sim: sim.Clone(), seq: r.seq}
	return nil
}

// List returns all runs newest first; runs created at the same instant keep
// reverse insertion order.
func (r *memoryRepository) List(ctx context.Context) ([]Simulation, error) {
	r.mu.RLock()
	stored := make([]storedSimulation, 0, len(r.records))
	for _, rec := range r.records {
		stored = append(stored, rec)
	}
	r.mu.RUnlock()

	sort.Slice(stored, func(i, j int) bool {
		a, b := stored[i], stored[j]
		if !a.sim.CreatedAt.Equal(b.sim.CreatedAt) {
			return a.sim.CreatedAt.After(b.sim.CreatedAt)
		}
		return a.seq > b.seq
	})

	sims := make([]Simulation, len(stored))
	for i, rec := range stored {
		sims[i] = rec.sim.Clone()
	}
	return sims, nil
}

func (r *memoryRepository) Get(ctx context.Context, id uuid.UUID) (*Simulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, apperrors.NotFound("simulation", id.String())
	}
	sim := rec.sim.Clone()
	return &sim, nil
}
