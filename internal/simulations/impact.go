package simulations

import (
	"fmt"
	"math"
)

// Linear coefficients per intervention unit.
const (
	airTreesCoef      = -0.20
	airRenewablesCoef = -0.15
	airHousingCoef    = 0.10

	vegetationTreesCoef   = 0.008
	vegetationWaterCoef   = 0.003
	vegetationHousingCoef = -0.005

	temperatureTreesCoef   = -0.03
	temperatureWaterCoef   = -0.05
	temperatureHousingCoef = 0.02

	// significantAirDelta is the magnitude beyond which an air quality change
	// is flagged as significant or a concern.
	significantAirDelta = 10.0
)

// ComputeImpact maps enabled interventions to predicted metric deltas. It is
// pure and deterministic.
func ComputeImpact(in Interventions) Predictions {
	return Predictions{
		AirQuality:  formatAirQuality(airQualityDelta(in)),
		Vegetation:  formatVegetation(vegetationDelta(in)),
		Temperature: formatTemperature(temperatureDelta(in)),
	}
}

func airQualityDelta(in Interventions) float64 {
	return airTreesCoef*in.Magnitude(InterventionTrees) +
		airRenewablesCoef*in.Magnitude(InterventionRenewables) +
		airHousingCoef*in.Magnitude(InterventionHousing)
}

func vegetationDelta(in Interventions) float64 {
	return vegetationTreesCoef*in.Magnitude(InterventionTrees) +
		vegetationWaterCoef*in.Magnitude(InterventionWater) +
		vegetationHousingCoef*in.Magnitude(InterventionHousing)
}

func temperatureDelta(in Interventions) float64 {
	return temperatureTreesCoef*in.Magnitude(InterventionTrees) +
		temperatureWaterCoef*in.Magnitude(InterventionWater) +
		temperatureHousingCoef*in.Magnitude(InterventionHousing)
}

// formatAirQuality rounds half away from zero before printing.
func formatAirQuality(delta float64) string {
	rounded := int(math.Round(delta))
	switch {
	case delta < -significantAirDelta:
		return fmt.Sprintf("%d%% improvement (significant)", rounded)
	case delta < 0:
		return fmt.Sprintf("%d%% improvement", rounded)
	case delta > significantAirDelta:
		return fmt.Sprintf("%d%% degradation (concern)", rounded)
	case delta > 0:
		return fmt.Sprintf("%d%% degradation", rounded)
	default:
		return "No significant change"
	}
}

func formatVegetation(delta float64) string {
	delta = positiveZero(delta)
	if delta < 0 {
		return fmt.Sprintf("%.3f NDVI", delta)
	}
	return fmt.Sprintf("+%.3f NDVI", delta)
}

func formatTemperature(delta float64) string {
	delta = positiveZero(delta)
	if delta < 0 {
		return fmt.Sprintf("%.1f°C cooler", delta)
	}
	return fmt.Sprintf("+%.1f°C warmer", delta)
}

// positiveZero folds negative zero into zero so it prints with a "+" sign.
func positiveZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
