package portfolio

import (
	"context"
	"strings"
	"time"

	"folio/internal/errors"
	"folio/internal/store"
	"folio/internal/types"

	"github.com/google/uuid"
)

// Notifier sends the emails that follow a contact submission
type Notifier interface {
	NotifyOwner(ctx context.Context, s types.ContactSubmission) error
	Confirm(ctx context.Context, s types.ContactSubmission) bool
}

// ContactService stores submissions and, when a notifier is set, emails them
type ContactService struct {
	store    store.ContactStore
	notifier Notifier
	now      func() time.Time
	logger   *errors.Logger
}

// NewContactService builds the service; notifier may be nil when mail is not configured
func NewContactService(s store.ContactStore, notifier Notifier, logger *errors.Logger) *ContactService {
	return &ContactService{store: s, notifier: notifier, now: func() time.Time { return time.Now().UTC() }, logger: logger}
}

// Submit stores the submission first, then attempts the notification.
// A mail failure is recorded in the stored status and never fails the call.
func (c *ContactService) Submit(ctx context.Context, in types.ContactSubmissionCreate) (types.ContactSubmission, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := types.Validate(in); err != nil {
		return types.ContactSubmission{}, err
	}

	submission := types.ContactSubmission{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Email:       in.Email,
		Message:     in.Message,
		SubmittedAt: c.now(),
		Status:      types.ContactStatusPending,
	}
	if err := c.store.InsertContact(ctx, submission); err != nil {
		return types.ContactSubmission{}, err
	}
	c.logger.Info("Contact submission stored", "id", submission.ID)

	if c.notifier == nil {
		return submission, nil
	}

	status := types.ContactStatusNotified
	if err := c.notifier.NotifyOwner(ctx, submission); err != nil {
		c.logger.LogError(err, "Owner notification failed", "submission_id", submission.ID)
		status = types.ContactStatusEmailFailed
	} else {
		c.notifier.Confirm(ctx, submission)
	}

	if err := c.store.UpdateContactStatus(ctx, submission.ID, status); err != nil {
		c.logger.LogError(err, "Failed to record notification status", "submission_id", submission.ID, "status", status)
		return submission, nil
	}
	submission.Status = status
	return submission, nil
}

func (c *ContactService) List(ctx context.Context) ([]types.ContactSubmission, error) {
	return c.store.ListContacts(ctx)
}
