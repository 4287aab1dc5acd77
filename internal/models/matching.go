// internal/models/matching.go
package models

type MatchingCriteria struct {
	Activities           []string    `json:"activities"`
	IntellectualServices []string    `json:"intellectualServices,omitempty"`
	Location             GeoLocation `json:"location"`
	Timeline             Timeline    `json:"timeline"`
	Budget               Budget      `json:"budget"`
}

// RequiredCodes returns the union of activity and intellectual-service codes,
// deduplicated, in first-seen order.
func (c MatchingCriteria) RequiredCodes() []string {
	seen := make(map[string]struct{}, len(c.Activities)+len(c.IntellectualServices))
	codes := make([]string, 0, len(c.Activities)+len(c.IntellectualServices))
	for _, group := range [][]string{c.Activities, c.IntellectualServices} {
		for _, code := range group {
			if code == "" {
				continue
			}
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}
	return codes
}

func (c MatchingCriteria) Validate() error {
	return c.Timeline.Validate()
}

// MatchedCompany is a company scored against one set of criteria.
type MatchedCompany struct {
	Company

	MatchingScore          float64  `json:"matchingScore"`
	ActivityScore          float64  `json:"activityScore"`
	LocationScore          float64  `json:"locationScore"`
	AvailabilityScore      float64  `json:"availabilityScore"`
	ReliabilityScore       float64  `json:"reliabilityScore"`
	DistanceKm             float64  `json:"distanceKm"`
	CanHandleAllActivities bool     `json:"canHandleAllActivities"`
	MissingActivities      []string `json:"missingActivities"`
	EstimatedResponseHours int      `json:"estimatedResponseHours"`
}
