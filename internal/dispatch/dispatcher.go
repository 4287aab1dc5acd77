// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/common/metrics"
	"renovation-matching/internal/models"
	"renovation-matching/pkg/registry"

	"github.com/google/uuid"
)

// DefaultOutboundCap is how many selected companies get an outbound
// notification. Every selected company still gets a stored record.
const DefaultOutboundCap = 10

var ErrAllNotificationsFailed = errors.New("all notifications failed")

// NotificationStore persists notification records.
type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) error
}

// Notifier delivers a notification outside the CRM (email, webhook, queue).
type Notifier interface {
	Notify(ctx context.Context, req models.NotifyRequest) error
}

// channelNamer is implemented by notifiers that want their own metrics label.
type channelNamer interface {
	Channel() string
}

type Config struct {
	OutboundCap int
}

// Report summarises one Dispatch call.
type Report struct {
	Selected        int      `json:"selected"`
	Persisted       int      `json:"persisted"`
	PersistFailed   int      `json:"persistFailed"`
	Sent            int      `json:"sent"`
	SendFailed      int      `json:"sendFailed"`
	SkippedOutbound int      `json:"skippedOutbound"`
	NotificationIDs []string `json:"notificationIds"`
}

// Dispatcher records and sends project-match notifications. Failures for one
// company are logged and counted; the remaining companies are still processed.
type Dispatcher struct {
	cfg      Config
	store    NotificationStore
	notifier Notifier
	catalog  *registry.Catalog
	logger   logger.Logger

	now   func() time.Time
	newID func() string
}

// NewDispatcher builds a dispatcher. notifier and catalog may be nil: without
// a notifier nothing is sent, without a catalog activity codes are used as
// labels.
func NewDispatcher(cfg Config, store NotificationStore, notifier Notifier, catalog *registry.Catalog, log logger.Logger) *Dispatcher {
	if cfg.OutboundCap <= 0 {
		cfg.OutboundCap = DefaultOutboundCap
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Dispatcher{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		catalog:  catalog,
		logger:   log.WithFields(map[string]interface{}{"component": "notification-dispatcher"}),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

// Dispatch writes one record per selected company, in order, and notifies the
// first OutboundCap of them. It fails with ErrAllNotificationsFailed only when
// no company got either a stored record or a successful send.
func (d *Dispatcher) Dispatch(ctx context.Context, selected []models.MatchedCompany, project models.Project) (*Report, error) {
	report := &Report{Selected: len(selected), NotificationIDs: []string{}}
	if len(selected) == 0 {
		return report, nil
	}

	log := d.logger.WithFields(map[string]interface{}{"projectId": project.ID})
	channel := d.channel()
	reached := 0

	for i, m := range selected {
		message := d.message(m, project)

		persisted := d.persist(ctx, log, m, project, message, report)

		sent := false
		switch {
		case d.notifier == nil || i >= d.cfg.OutboundCap:
			report.SkippedOutbound++
			metrics.NotificationsDispatched.WithLabelValues(channel, metrics.OutcomeSkipped).Inc()
		default:
			sent = d.send(ctx, log, channel, m, project, message, report)
		}

		if persisted || sent {
			reached++
		}
	}

	log.Info("notifications dispatched", map[string]interface{}{
		"selected":        report.Selected,
		"persisted":       report.Persisted,
		"persistFailed":   report.PersistFailed,
		"sent":            report.Sent,
		"sendFailed":      report.SendFailed,
		"skippedOutbound": report.SkippedOutbound,
	})

	if reached == 0 {
		return report, fmt.Errorf("%w: %d companies, %d record failures, %d send failures",
			ErrAllNotificationsFailed, report.Selected, report.PersistFailed, report.SendFailed)
	}
	return report, nil
}

func (d *Dispatcher) persist(ctx context.Context, log logger.Logger, m models.MatchedCompany, project models.Project, message string, report *Report) bool {
	n := models.Notification{
		ID:            d.newID(),
		CompanyID:     m.ID,
		ProjectID:     project.ID,
		Type:          models.NotificationTypeProjectMatch,
		Message:       message,
		MatchingScore: m.MatchingScore,
		CreatedAt:     d.now(),
	}
	if err := d.store.Create(ctx, n); err != nil {
		report.PersistFailed++
		metrics.NotificationsDispatched.WithLabelValues(metrics.ChannelStore, metrics.OutcomeFailure).Inc()
		log.Error("failed to store notification", map[string]interface{}{
			"companyId": m.ID,
			"error":     err,
		})
		return false
	}
	report.Persisted++
	report.NotificationIDs = append(report.NotificationIDs, n.ID)
	metrics.NotificationsDispatched.WithLabelValues(metrics.ChannelStore, metrics.OutcomeSuccess).Inc()
	return true
}

func (d *Dispatcher) send(ctx context.Context, log logger.Logger, channel string, m models.MatchedCompany, project models.Project, message string, report *Report) bool {
	req := models.NotifyRequest{
		CompanyID:         m.ID,
		ProjectID:         project.ID,
		Type:              models.ChannelEmail,
		MatchingScore:     m.MatchingScore,
		DistanceKm:        m.DistanceKm,
		MissingActivities: append([]string{}, m.MissingActivities...),
		CompanyName:       m.Name,
		RecipientEmail:    m.Email,
		RecipientPhone:    m.Phone,
		ProjectTitle:      project.Title,
		Message:           message,
	}
	if err := d.notifier.Notify(ctx, req); err != nil {
		report.SendFailed++
		metrics.NotificationsDispatched.WithLabelValues(channel, metrics.OutcomeFailure).Inc()
		log.Warn("outbound notification failed", map[string]interface{}{
			"companyId": m.ID,
			"channel":   channel,
			"error":     err,
		})
		return false
	}
	report.Sent++
	metrics.NotificationsDispatched.WithLabelValues(channel, metrics.OutcomeSuccess).Inc()
	return true
}

func (d *Dispatcher) channel() string {
	if cn, ok := d.notifier.(channelNamer); ok {
		return cn.Channel()
	}
	return "outbound"
}

// message renders the human readable text stored with the record and sent to
// the company.
func (d *Dispatcher) message(m models.MatchedCompany, project models.Project) string {
	title := project.Title
	if title == "" {
		title = project.ID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New project match: %s", title)
	if city := project.Location.City; city != "" {
		fmt.Fprintf(&b, " (%s)", city)
	}
	fmt.Fprintf(&b, ". Matching score: %d%%.", int(math.Round(m.MatchingScore*100)))
	if m.DistanceKm > 0 {
		fmt.Fprintf(&b, " Distance: %.1f km.", m.DistanceKm)
	}
	if len(m.MissingActivities) > 0 {
		fmt.Fprintf(&b, " Not covered by your activities: %s.", strings.Join(d.catalog.Labels(m.MissingActivities), ", "))
	}
	return b.String()
}
