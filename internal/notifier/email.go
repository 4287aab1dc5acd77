// internal/notifier/email.go
package notifier

import (
	"context"
	"fmt"
	"math"

	awsclient "renovation-matching/internal/common/aws"
	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/models"
)

type EmailConfig struct {
	FromEmail    string
	EmailEnabled bool
	SMSEnabled   bool
	// SMSScoreThreshold is the minimum matching score for an SMS on top of
	// the email.
	SMSScoreThreshold float64
}

// EmailNotifier sends the match by SES email, plus an SNS text message for
// high scoring companies with a phone number.
type EmailNotifier struct {
	cfg    EmailConfig
	ses    awsclient.SESService
	sns    awsclient.SNSService
	logger logger.Logger
}

func NewEmailNotifier(cfg EmailConfig, sesClient awsclient.SESService, snsClient awsclient.SNSService, log logger.Logger) *EmailNotifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &EmailNotifier{
		cfg:    cfg,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.WithFields(map[string]interface{}{"component": "email-notifier"}),
	}
}

func (n *EmailNotifier) Channel() string { return ChannelSES }

// Notify fails when the email cannot be sent. SMS failures are only logged.
func (n *EmailNotifier) Notify(ctx context.Context, req models.NotifyRequest) error {
	sms := n.wantsSMS(req)
	if !n.cfg.EmailEnabled && !sms {
		return ErrNothingEnabled
	}

	if n.cfg.EmailEnabled {
		if req.RecipientEmail == "" {
			return fmt.Errorf("%w: %s", ErrNoRecipient, req.CompanyID)
		}
		input := awsclient.NewEmailInput(n.cfg.FromEmail, req.RecipientEmail, subject(req), req.Message)
		if _, err := n.ses.SendEmail(ctx, input); err != nil {
			return fmt.Errorf("send email to %s: %w", req.CompanyID, err)
		}
	}

	if sms {
		if _, err := n.sns.Publish(ctx, awsclient.NewSMSInput(req.RecipientPhone, smsText(req))); err != nil {
			n.logger.Warn("SMS send failed", map[string]interface{}{
				"companyId": req.CompanyID,
				"error":     err,
			})
			if !n.cfg.EmailEnabled {
				return fmt.Errorf("send SMS to %s: %w", req.CompanyID, err)
			}
		}
	}
	return nil
}

func (n *EmailNotifier) wantsSMS(req models.NotifyRequest) bool {
	return n.cfg.SMSEnabled && n.sns != nil && req.RecipientPhone != "" &&
		req.MatchingScore >= n.cfg.SMSScoreThreshold
}

func subject(req models.NotifyRequest) string {
	if req.ProjectTitle == "" {
		return "New project match"
	}
	return "New project match: " + req.ProjectTitle
}

func smsText(req models.NotifyRequest) string {
	title := req.ProjectTitle
	if title == "" {
		title = req.ProjectID
	}
	return fmt.Sprintf("New project match (%d%%): %s. Details sent by email.",
		int(math.Round(req.MatchingScore*100)), title)
}
