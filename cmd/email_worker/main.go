package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/Codeveil-Studio/QResolve-app/config"
	"github.com/Codeveil-Studio/QResolve-app/pkg/helpers"
	"github.com/Codeveil-Studio/QResolve-app/pkg/mailer"
	mailtpl "github.com/Codeveil-Studio/QResolve-app/pkg/mailer/templates"
)

const sendTimeout = 15 * time.Second

type sender interface {
	Send(ctx context.Context, to, subject, text, html string, tags ...string) error
}

// outcome says what to do with a delivery.
type outcome int

const (
	ack outcome = iota
	drop
	retry
)

// render fills subject, text and html from the named template. Jobs
// without a template are sent as given.
func render(job mailer.EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	data, err := mailtpl.FromMap(job.Data)
	if err != nil {
		return "", "", "", err
	}
	if data.Email == "" {
		data.Email = job.To
	}
	return mailtpl.Render(job.Template, data)
}

func deliver(ctx context.Context, s sender, body []byte, logger *logrus.Logger) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		helpers.LogWarn(logger, "bad message", err, nil)
		return drop
	}
	if err := job.Validate(); err != nil {
		helpers.LogWarn(logger, "invalid email job", err, logrus.Fields{"template": job.Template})
		return drop
	}
	subject, text, html, err := render(job)
	if err != nil {
		helpers.LogError(logger, "render failed", err, logrus.Fields{"template": job.Template})
		return drop
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	var tags []string
	if job.Template != "" {
		tags = append(tags, job.Template)
	}
	if err := s.Send(c, job.To, subject, text, html, tags...); err != nil {
		helpers.LogError(logger, "send failed", err, logrus.Fields{"template": job.Template})
		return retry
	}
	logger.WithField("template", job.Template).Debug("email sent")
	return ack
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareDurableQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			switch deliver(ctx, mg, msg.Body, logger) {
			case ack:
				_ = msg.Ack(false)
			case drop:
				_ = msg.Nack(false, false)
			case retry:
				// one redelivery, then the message is dropped
				_ = msg.Nack(false, !msg.Redelivered)
			}
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
