package services

import (
	"gopkg.in/gomail.v2"

	"otprelay/internal/config"
	"otprelay/internal/metrics"
)

type EmailService interface {
	SendEmail(to, subject, msg string) error
}

type emailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) EmailService {
	return &emailService{cfg: cfg}
}

func (e *emailService) SendEmail(to, subject, msg string) error {
	m := gomail.NewMessage()

	from := e.cfg.From
	if from == "" {
		from = e.cfg.Username
	}
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", msg)

	d := gomail.NewDialer(e.cfg.Host, e.cfg.Port, e.cfg.Username, e.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("sent").Inc()
	return nil
}
