// internal/workers/matching/notify-companies/models.go
package notifycompanies

import (
	"renovation-matching/internal/dispatch"
	"renovation-matching/internal/models"
)

type Input struct {
	Project           models.Project          `json:"project"`
	SelectedCompanies []models.MatchedCompany `json:"selectedCompanies"`
}

type Output struct {
	dispatch.Report
	Status string `json:"status"`
}

// Output statuses.
const (
	StatusSent    = "sent"
	StatusPartial = "partial"
	StatusNone    = "none"
)

const inputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["project", "selectedCompanies"],
  "properties": {
    "project": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "title": {"type": "string"}
      }
    },
    "selectedCompanies": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "matchingScore"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "matchingScore": {"type": "number", "minimum": 0, "maximum": 1},
          "email": {"type": "string"},
          "missingActivities": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`
