// internal/models/company.go
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusInactive  CompanyStatus = "inactive"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

var ErrMalformedCompany = errors.New("malformed company record")

type Territory struct {
	Center   GeoLocation `json:"center"`
	RadiusKm float64     `json:"radiusKm"`
}

type DayHours struct {
	Available bool   `json:"available"`
	Start     string `json:"start,omitempty"` // HH:MM
	End       string `json:"end,omitempty"`
}

// CalendarEntry is a job the company has already committed to.
type CalendarEntry struct {
	ProjectID string `json:"projectId"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
}

type Availability struct {
	WorkingHours map[string]DayHours `json:"workingHours"` // keyed by lowercase weekday
	BlockedDates []Date              `json:"blockedDates,omitempty"`
	Calendar     []CalendarEntry     `json:"calendar,omitempty"`
}

// WorkingDaysPerWeek counts weekdays marked available.
func (a Availability) WorkingDaysPerWeek() int {
	days := 0
	for _, h := range a.WorkingHours {
		if h.Available {
			days++
		}
	}
	return days
}

// HasBlockedDateWithin reports whether any blocked date falls in [start, end].
func (a Availability) HasBlockedDateWithin(start, end Date) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	for _, d := range a.BlockedDates {
		if d.Within(start, end) {
			return true
		}
	}
	return false
}

type Reputation struct {
	AverageRating float64 `json:"averageRating"` // 0-5
	SuccessRate   float64 `json:"successRate"`   // 0-100
	ResponseRate  float64 `json:"responseRate"`  // 0-100
}

type Company struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	ContactName        string             `json:"contactName,omitempty"`
	Email              string             `json:"email,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	Activities         []string           `json:"activities"`
	Territory          Territory          `json:"territory"`
	Availability       *Availability      `json:"availability,omitempty"`
	Status             CompanyStatus      `json:"status"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	Reputation         Reputation         `json:"reputation"`
}

// Clone returns a copy that shares no slices, maps or pointers with c.
func (c Company) Clone() Company {
	if c.Activities != nil {
		c.Activities = append([]string{}, c.Activities...)
	}
	if c.Availability != nil {
		a := *c.Availability
		if a.WorkingHours != nil {
			a.WorkingHours = make(map[string]DayHours, len(c.Availability.WorkingHours))
			for day, h := range c.Availability.WorkingHours {
				a.WorkingHours[day] = h
			}
		}
		a.BlockedDates = append([]Date(nil), a.BlockedDates...)
		a.Calendar = append([]CalendarEntry(nil), a.Calendar...)
		c.Availability = &a
	}
	return c
}

// Eligible reports whether the company may take part in matching.
func (c Company) Eligible() bool {
	return c.Status == CompanyStatusActive && c.VerificationStatus == VerificationVerified
}

// Validate checks the fields the engine relies on.
func (c Company) Validate() error {
	var problems []string
	if strings.TrimSpace(c.ID) == "" {
		problems = append(problems, "missing id")
	}
	if !finite(c.Territory.Center.Latitude) || !finite(c.Territory.Center.Longitude) {
		problems = append(problems, "territory center is not a finite coordinate")
	}
	if !finite(c.Territory.RadiusKm) || c.Territory.RadiusKm < 0 {
		problems = append(problems, "territory radius must be a non-negative number")
	}
	r := c.Reputation
	if !finite(r.AverageRating) || !finite(r.SuccessRate) || !finite(r.ResponseRate) {
		problems = append(problems, "reputation metrics must be finite")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w %q: %s", ErrMalformedCompany, c.ID, strings.Join(problems, "; "))
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
