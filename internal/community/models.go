// Package community is the public issue board: residents file reports about
// local environmental problems and upvote the ones they care about.
package community

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a report.
type Category string

const (
	CategoryAirQuality Category = "air-quality"
	CategoryWater      Category = "water"
	CategoryWaste      Category = "waste"
	CategoryGreenSpace Category = "green-space"
	CategoryNoise      Category = "noise"
	CategoryOther      Category = "other"
)

// Categories lists every accepted category.
var Categories = []Category{
	CategoryAirQuality,
	CategoryWater,
	CategoryWaste,
	CategoryGreenSpace,
	CategoryNoise,
	CategoryOther,
}

// IsValid reports whether c is an accepted category.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the review state of a report. New reports are under review and
// nothing in the service moves them.
type Status string

const (
	StatusUnderReview Status = "under-review"
	StatusInProgress  Status = "in-progress"
	StatusResolved    Status = "resolved"
)

// Report is a community issue report.
type Report struct {
	ID          uuid.UUID `json:"id"`
	Category    Category  `json:"category"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Status      Status    `json:"status"`
	Upvotes     int       `json:"upvotes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasCoordinates reports whether the report can be placed on a map.
func (r *Report) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Clone returns a copy that shares no pointers with r.
func (r Report) Clone() Report {
	out := r
	if r.Latitude != nil {
		lat := *r.Latitude
		out.Latitude = &lat
	}
	if r.Longitude != nil {
		lon := *r.Longitude
		out.Longitude = &lon
	}
	return out
}

// CreateReportRequest is the payload for filing a report.
type CreateReportRequest struct {
	Category    Category `json:"category" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}
