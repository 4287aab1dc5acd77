// internal/models/project.go
package models

import "errors"

var ErrInvalidTimeline = errors.New("timeline end date is before start date")

// Project statuses as stored by the CRM.
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
)

type GeoLocation struct {
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lng"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	PostalCode string  `json:"postalCode,omitempty"`
}

type Timeline struct {
	StartDate         Date `json:"startDate"`
	EndDate           Date `json:"endDate"`
	EstimatedDuration int  `json:"estimatedDuration"` // days
}

func (t Timeline) Validate() error {
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate.Time) {
		return ErrInvalidTimeline
	}
	return nil
}

type Budget struct {
	Total     float64 `json:"total"`
	Materials float64 `json:"materials"`
	Labor     float64 `json:"labor"`
}

type Project struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title,omitempty"`
	ClientID             string      `json:"clientId,omitempty"`
	Status               string      `json:"status,omitempty"`
	Activities           []string    `json:"activities"`
	IntellectualServices []string    `json:"intellectualServices,omitempty"`
	Location             GeoLocation `json:"location"`
	Timeline             Timeline    `json:"timeline"`
	Budget               Budget      `json:"budget"`
}

// Criteria builds the matching criteria for the project. Slices are copied so
// the criteria can be passed around without aliasing the project.
func (p Project) Criteria() MatchingCriteria {
	return MatchingCriteria{
		Activities:           append([]string(nil), p.Activities...),
		IntellectualServices: append([]string(nil), p.IntellectualServices...),
		Location:             p.Location,
		Timeline:             p.Timeline,
		Budget:               p.Budget,
	}
}
