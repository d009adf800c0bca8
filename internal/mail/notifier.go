package mail

import (
	"context"
	"fmt"

	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/types"
)

// Notifier sends the owner notification and the submitter confirmation for a contact submission
type Notifier struct {
	sender           Sender
	to               string
	owner            string
	ownerTitle       string
	sendConfirmation bool
	logger           *errors.Logger
}

func NewNotifier(sender Sender, cfg config.MailConfig, app config.AppConfig, logger *errors.Logger) *Notifier {
	return &Notifier{
		sender:           sender,
		to:               cfg.To,
		owner:            app.OwnerName,
		ownerTitle:       app.OwnerTitle,
		sendConfirmation: cfg.SendConfirmation,
		logger:           logger,
	}
}

// NotifyOwner emails the submission to the site owner
func (n *Notifier) NotifyOwner(ctx context.Context, s types.ContactSubmission) error {
	html, err := renderTemplate("contact_notification.html", notificationData{
		Name:    s.Name,
		Email:   s.Email,
		Message: s.Message,
	})
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeMailFailed, "failed to build notification email", err)
	}
	return n.sender.Send(ctx, Message{
		To:      n.to,
		Subject: fmt.Sprintf("New Contact Form Submission from %s", s.Name),
		HTML:    html,
	})
}

// Confirm thanks the submitter. Failures are logged and reported as false.
func (n *Notifier) Confirm(ctx context.Context, s types.ContactSubmission) bool {
	if !n.sendConfirmation {
		return false
	}
	html, err := renderTemplate("contact_confirmation.html", confirmationData{
		Name:       s.Name,
		Owner:      n.owner,
		OwnerTitle: n.ownerTitle,
	})
	if err == nil {
		err = n.sender.Send(ctx, Message{
			To:      s.Email,
			Subject: fmt.Sprintf("Thank you for your message - %s", n.owner),
			HTML:    html,
		})
	}
	if err != nil {
		n.logger.LogError(err, "Confirmation email failed", "submission_id", s.ID)
		return false
	}
	return true
}
