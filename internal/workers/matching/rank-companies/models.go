// internal/workers/matching/rank-companies/models.go
package rankcompanies

import "renovation-matching/internal/models"

type Input struct {
	Project models.Project `json:"project"`
	// Criteria overrides the criteria derived from Project when set.
	Criteria *models.MatchingCriteria `json:"criteria,omitempty"`
	Limit    int                      `json:"limit,omitempty"`
}

type Output struct {
	MatchedCompanies     []models.MatchedCompany `json:"matchedCompanies"`
	TotalMatched         int                     `json:"totalMatched"`
	Considered           int                     `json:"considered"`
	Rejected             map[string]int          `json:"rejected"`
	Degraded             bool                    `json:"degraded"`
	DegradedAvailability int                     `json:"degradedAvailability"`
}

const inputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["project"],
  "properties": {
    "project": {
      "type": "object",
      "required": ["id", "location"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "activities": {"type": "array", "items": {"type": "string"}},
        "intellectualServices": {"type": "array", "items": {"type": "string"}},
        "location": {
          "type": "object",
          "required": ["lat", "lng"],
          "properties": {
            "lat": {"type": "number", "minimum": -90, "maximum": 90},
            "lng": {"type": "number", "minimum": -180, "maximum": 180}
          }
        }
      }
    },
    "criteria": {
      "type": "object",
      "properties": {
        "activities": {"type": "array", "items": {"type": "string"}},
        "intellectualServices": {"type": "array", "items": {"type": "string"}},
        "location": {
          "type": "object",
          "required": ["lat", "lng"],
          "properties": {
            "lat": {"type": "number", "minimum": -90, "maximum": 90},
            "lng": {"type": "number", "minimum": -180, "maximum": 180}
          }
        }
      }
    },
    "limit": {"type": "integer", "minimum": 0, "maximum": 500}
  }
}`
