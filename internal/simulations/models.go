package simulations

import (
	"time"

	"github.com/google/uuid"
)

// Intervention identifies an urban-policy lever on the what-if simulator.
type Intervention string

const (
	InterventionTrees      Intervention = "trees"
	InterventionHousing    Intervention = "housing"
	InterventionWater      Intervention = "water"
	InterventionRenewables Intervention = "renewables"
)

// KnownInterventions lists every lever the simulator accepts.
var KnownInterventions = []Intervention{
	InterventionTrees,
	InterventionHousing,
	InterventionWater,
	InterventionRenewables,
}

// Magnitude bounds for a single intervention (percent of adoption).
const (
	MinMagnitude = 0.0
	MaxMagnitude = 100.0
)

// IsKnown reports whether i is one of the simulator's levers.
func (i Intervention) IsKnown() bool {
	for _, known := range KnownInterventions {
		if i == known {
			return true
		}
	}
	return false
}

// Interventions maps an enabled intervention id to its magnitude. Absent keys
// have no effect.
type Interventions map[string]float64

// Magnitude returns the magnitude of i, or zero when it is not enabled.
func (in Interventions) Magnitude(i Intervention) float64 {
	return in[string(i)]
}

// Clone returns an independent copy.
func (in Interventions) Clone() Interventions {
	if in == nil {
		return nil
	}
	out := make(Interventions, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Predictions holds the human-readable metric deltas of a simulation run.
type Predictions struct {
	AirQuality  string `json:"airQuality"`
	Vegetation  string `json:"vegetation"`
	Temperature string `json:"temperature"`
}

// Simulation is a stored what-if run. Records are never mutated after creation.
type Simulation struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Location      string        `json:"location"`
	Interventions Interventions `json:"interventions"`
	Predictions   *Predictions  `json:"predictions"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Clone returns a deep copy so callers cannot reach store state.
func (s Simulation) Clone() Simulation {
	out := s
	out.Interventions = s.Interventions.Clone()
	if s.Predictions != nil {
		p := *s.Predictions
		out.Predictions = &p
	}
	return out
}

// CreateSimulationRequest is the payload for POST /simulations.
type CreateSimulationRequest struct {
	Name          string        `json:"name" binding:"required"`
	Location      string        `json:"location" binding:"required"`
	Interventions Interventions `json:"interventions" binding:"required,interventions"`
}
