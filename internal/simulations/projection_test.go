package simulations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-urban-planner/planner-backend/internal/environment"
)

func TestProject(t *testing.T) {
	current := environment.Snapshot{AirQuality: 30, VegetationIndex: 0.5, Temperature: 25, WaterQuality: 7.0}

	projections := Project(current, Interventions{"trees": 10, "water": 10, "renewables": 25})
	require.Len(t, projections, 4)

	assert.Equal(t, "Vegetation Index", projections[0].Metric)
	assert.InDelta(t, 0.54, projections[0].PredictedValue, 1e-9)
	assert.Equal(t, "+4.0% NDVI improvement", projections[0].Impact)

	assert.Equal(t, "Temperature", projections[1].Metric)
	assert.InDelta(t, 24.7, projections[1].PredictedValue, 1e-9)
	assert.Equal(t, "-0.3°C cooling effect", projections[1].Impact)

	assert.Equal(t, "Water Quality", projections[2].Metric)
	assert.InDelta(t, 7.2, projections[2].PredictedValue, 1e-9)
	assert.Equal(t, "+0.20 pH improvement", projections[2].Impact)

	assert.Equal(t, "Air Quality", projections[3].Metric)
	assert.InDelta(t, 17.5, projections[3].PredictedValue, 1e-9)
	assert.Equal(t, "-13 AQI reduction", projections[3].Impact)
}

func TestProject_Caps(t *testing.T) {
	current := environment.Snapshot{AirQuality: 10, VegetationIndex: 0.98, Temperature: 20, WaterQuality: 8.4}

	projections := Project(current, Interventions{"trees": 100, "water": 100, "renewables": 100})
	require.Len(t, projections, 4)

	assert.Equal(t, 1.0, projections[0].PredictedValue)
	assert.Equal(t, 8.5, projections[2].PredictedValue)
	assert.Equal(t, 0.0, projections[3].PredictedValue)
}

func TestProject_HousingOnlyHasNoProjection(t *testing.T) {
	assert.Empty(t, Project(environment.Snapshot{}, Interventions{"housing": 80}))
}
