package mailer

import (
	"context"
	"errors"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject+Text(+HTML) must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "verify_email", "organization_created", "issue_reported"
	Data     map[string]any `json:"data,omitempty"`
}

var ErrInvalidJob = errors.New("email job needs a recipient and a template or subject")

func (j EmailJob) Validate() error {
	if j.To == "" || (j.Template == "" && j.Subject == "") {
		return ErrInvalidJob
	}
	return nil
}

// Queue accepts email jobs for asynchronous delivery.
type Queue interface {
	Enqueue(ctx context.Context, job EmailJob) error
}

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// PublisherQueue puts jobs on a broker queue.
type PublisherQueue struct {
	Pub JSONPublisher
}

func (q PublisherQueue) Enqueue(ctx context.Context, job EmailJob) error {
	if err := job.Validate(); err != nil {
		return err
	}
	return q.Pub.PublishJSON(ctx, job)
}

// NopQueue drops every job. Used when MAIL_SEND_ENABLED=false.
type NopQueue struct{}

func (NopQueue) Enqueue(context.Context, EmailJob) error { return nil }
