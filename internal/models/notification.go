// internal/models/notification.go
package models

import "time"

// Notification types
const (
	NotificationTypeProjectMatch = "project_match"
)

// Notification channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Notification is the persisted record written for every selected company.
type Notification struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"companyId"`
	ProjectID     string    `json:"projectId"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	MatchingScore float64   `json:"matchingScore"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NotifyRequest is handed to the outbound notifier. Recipient and display
// fields are filled from the matched company so notifiers need no lookup.
type NotifyRequest struct {
	CompanyID         string   `json:"companyId"`
	ProjectID         string   `json:"projectId"`
	Type              string   `json:"type"`
	MatchingScore     float64  `json:"matchingScore"`
	DistanceKm        float64  `json:"distanceKm"`
	MissingActivities []string `json:"missingActivities"`

	CompanyName    string `json:"companyName,omitempty"`
	RecipientEmail string `json:"recipientEmail,omitempty"`
	RecipientPhone string `json:"recipientPhone,omitempty"`
	ProjectTitle   string `json:"projectTitle,omitempty"`
	Message        string `json:"message,omitempty"`
}
