package simulations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smart-urban-planner/planner-backend/internal/apperrors"
	"smart-urban-planner/planner-backend/internal/environment"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, sim *Simulation) error {
	args := m.Called(ctx, sim)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]Simulation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Simulation), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id uuid.UUID) (*Simulation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Simulation), args.Error(1)
}

func TestCreateSimulation(t *testing.T) {
	mockRepo := new(MockRepository)
	fixed := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	service := NewService(mockRepo, zap.NewNop(), WithClock(func() time.Time { return fixed }))

	ctx := context.Background()
	req := CreateSimulationRequest{
		Name:          "  Downtown canopy  ",
		Location:      "New York",
		Interventions: Interventions{"trees": 20, "water": 10},
	}

	mockRepo.On("Create", ctx, mock.AnythingOfType("*simulations.Simulation")).Return(nil)

	sim, err := service.CreateSimulation(ctx, req)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sim.ID)
	assert.Equal(t, "Downtown canopy", sim.Name)
	assert.Equal(t, fixed, sim.CreatedAt)
	require.NotNil(t, sim.Predictions)
	assert.Equal(t, "-4% improvement", sim.Predictions.AirQuality)
	assert.Equal(t, "+0.190 NDVI", sim.Predictions.Vegetation)
	assert.Equal(t, "-1.1°C cooler", sim.Predictions.Temperature)

	// the stored interventions are a copy of the request map
	req.Interventions["trees"] = 90
	assert.Equal(t, 20.0, sim.Interventions["trees"])

	mockRepo.AssertExpectations(t)
}

func TestCreateSimulation_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateSimulationRequest
	}{
		{"missing name", CreateSimulationRequest{Location: "Austin", Interventions: Interventions{}}},
		{"blank location", CreateSimulationRequest{Name: "a", Location: "   ", Interventions: Interventions{}}},
		{"missing interventions", CreateSimulationRequest{Name: "a", Location: "Austin"}},
		{"unknown intervention", CreateSimulationRequest{Name: "a", Location: "Austin", Interventions: Interventions{"parking": 10}}},
		{"negative magnitude", CreateSimulationRequest{Name: "a", Location: "Austin", Interventions: Interventions{"trees": -1}}},
		{"magnitude above range", CreateSimulationRequest{Name: "a", Location: "Austin", Interventions: Interventions{"water": 100.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := NewService(mockRepo, zap.NewNop())

			sim, err := service.CreateSimulation(context.Background(), tt.req)

			assert.Nil(t, sim)
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateSimulation_EmptyInterventionsAllowed(t *testing.T) {
	service := NewService(NewMemoryRepository(), zap.NewNop())

	sim, err := service.CreateSimulation(context.Background(), CreateSimulationRequest{
		Name:          "Baseline",
		Location:      "Chicago",
		Interventions: Interventions{},
	})

	require.NoError(t, err)
	assert.Equal(t, "No significant change", sim.Predictions.AirQuality)
}

func TestCreateSimulation_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("store closed"))

	_, err := service.CreateSimulation(ctx, CreateSimulationRequest{
		Name: "a", Location: "b", Interventions: Interventions{},
	})
	assert.EqualError(t, err, "store closed")
}

func TestListSimulations_NewestFirst(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	service := NewService(NewMemoryRepository(), zap.NewNop(), WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	ctx := context.Background()

	const n = 10
	for i := 0; i < n; i++ {
		_, err := service.CreateSimulation(ctx, CreateSimulationRequest{
			Name: "run", Location: "Seattle", Interventions: Interventions{"trees": float64(i)},
		})
		require.NoError(t, err)
	}

	sims, err := service.ListSimulations(ctx)
	require.NoError(t, err)
	require.Len(t, sims, n)
	for i := 1; i < n; i++ {
		assert.True(t, sims[i-1].CreatedAt.After(sims[i].CreatedAt))
	}
	assert.Equal(t, float64(n-1), sims[0].Interventions["trees"])
}

func TestGetSimulation_NotFound(t *testing.T) {
	service := NewService(NewMemoryRepository(), zap.NewNop())

	_, err := service.GetSimulation(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProjectImpact_RejectsUnknownLever(t *testing.T) {
	service := NewService(NewMemoryRepository(), zap.NewNop())

	_, err := service.ProjectImpact(context.Background(), environment.Snapshot{}, Interventions{"bikes": 5})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
