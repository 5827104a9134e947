package simulations

import (
	"fmt"
	"math"

	"smart-urban-planner/planner-backend/internal/environment"
)

// Projection is a metric forecast evaluated against a current snapshot. It is
// served by POST /ai/simulate and never stored with a simulation run.
type Projection struct {
	Metric         string  `json:"metric"`
	CurrentValue   float64 `json:"currentValue"`
	PredictedValue float64 `json:"predictedValue"`
	Impact         string  `json:"impact"`
}

const (
	projectedNDVIPerTree      = 0.004
	projectedCoolingPerTree   = 0.03
	projectedPHPerWaterUnit   = 0.02
	projectedAQIPerRenewable  = 0.5
	projectedMaxWaterPH       = 8.5
	projectedMaxVegetationIdx = 1.0
)

// Project forecasts absolute metric values for the enabled interventions.
// Only levers with a positive magnitude produce entries.
func Project(current environment.Snapshot, in Interventions) []Projection {
	projections := make([]Projection, 0, 4)

	if trees := in.Magnitude(InterventionTrees); trees > 0 {
		ndviIncrease := trees * projectedNDVIPerTree
		projections = append(projections, Projection{
			Metric:         "Vegetation Index",
			CurrentValue:   current.VegetationIndex,
			PredictedValue: math.Min(projectedMaxVegetationIdx, current.VegetationIndex+ndviIncrease),
			Impact:         fmt.Sprintf("+%.1f%% NDVI improvement", ndviIncrease*100),
		})

		cooling := trees * projectedCoolingPerTree
		projections = append(projections, Projection{
			Metric:         "Temperature",
			CurrentValue:   current.Temperature,
			PredictedValue: current.Temperature - cooling,
			Impact:         fmt.Sprintf("-%.1f°C cooling effect", cooling),
		})
	}

	if water := in.Magnitude(InterventionWater); water > 0 {
		improvement := water * projectedPHPerWaterUnit
		projections = append(projections, Projection{
			Metric:         "Water Quality",
			CurrentValue:   current.WaterQuality,
			PredictedValue: math.Min(projectedMaxWaterPH, current.WaterQuality+improvement),
			Impact:         fmt.Sprintf("+%.2f pH improvement", improvement),
		})
	}

	if renewables := in.Magnitude(InterventionRenewables); renewables > 0 {
		reduction := renewables * projectedAQIPerRenewable
		projections = append(projections, Projection{
			Metric:         "Air Quality",
			CurrentValue:   current.AirQuality,
			PredictedValue: math.Max(0, current.AirQuality-reduction),
			Impact:         fmt.Sprintf("-%d AQI reduction", int(math.Round(reduction))),
		})
	}

	return projections
}
