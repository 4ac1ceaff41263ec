package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"busly/internal/bookings"
	"busly/pkg/logger"
)

// EmailService delivers a rendered booking email
type EmailService interface {
	Send(ctx context.Context, email *EmailMessage) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// SMTPEmailService sends booking emails over SMTP with STARTTLS
type SMTPEmailService struct {
	config *SMTPConfig
	log    *logger.Logger
}

func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}

	return &SMTPEmailService{
		config: config,
		log:    logger.GetDefault(),
	}, nil
}

func (s *SMTPEmailService) Send(ctx context.Context, email *EmailMessage) error {
	message := s.buildMessage(email)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var err error
	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, email.RecipientEmail, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, []string{email.RecipientEmail}, message)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("booking email sent",
		slog.String("to", email.RecipientEmail),
		slog.String("subject", email.Subject))
	return nil
}

func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	tlsconfig := &tls.Config{
		ServerName: s.config.Host,
	}
	if err = client.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

// buildMessage creates a multipart/alternative MIME message
func (s *SMTPEmailService) buildMessage(email *EmailMessage) []byte {
	boundary := "busly-boundary-7f3a"
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail))
	b.WriteString(fmt.Sprintf("To: %s\r\n", email.RecipientEmail))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(email.TextBody)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(email.HTMLBody)
	b.WriteString("\r\n")

	b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return []byte(b.String())
}

// MockEmailService logs instead of sending, for dev and tests
type MockEmailService struct {
	log *logger.Logger
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{log: logger.GetDefault()}
}

func (s *MockEmailService) Send(ctx context.Context, email *EmailMessage) error {
	s.log.Info("mock email",
		slog.String("to", email.RecipientEmail),
		slog.String("subject", email.Subject))
	return nil
}

// RenderBookingEmail renders the customer email for a booking event
func RenderBookingEmail(event bookings.Event, address, name string) *EmailMessage {
	seats := strings.Join(event.SeatNumbers, ", ")
	amount := formatRupees(event.TotalPaise)

	var subject, headline, body string
	switch event.Type {
	case bookings.EventConfirmed:
		subject = fmt.Sprintf("Booking confirmed for %s", event.TravelDate)
		headline = "Your booking is confirmed"
		body = fmt.Sprintf("Seats %s are booked for %s. Amount paid: %s.", seats, event.TravelDate, amount)
	case bookings.EventExpired:
		subject = "Your seat hold has expired"
		headline = "Seat hold expired"
		body = fmt.Sprintf("The hold on seats %s for %s lapsed before payment completed. The seats are back on sale; you can book again anytime.", seats, event.TravelDate)
	default:
		subject = "Your booking was not completed"
		headline = "Booking released"
		body = fmt.Sprintf("The payment for seats %s on %s did not go through, so the reservation was released. No money was charged for this booking.", seats, event.TravelDate)
	}

	htmlBody := fmt.Sprintf(`
		<h2>%s</h2>
		<p>Hi %s,</p>
		<p>%s</p>
		<p>Travel date: <strong>%s</strong><br>Seats: <strong>%s</strong></p>
		<p>Safe travels,<br>The Busly Team</p>
	`, headline, name, body, event.TravelDate, seats)

	textBody := fmt.Sprintf("Hi %s,\n\n%s\n\nTravel date: %s\nSeats: %s\n\nSafe travels,\nThe Busly Team",
		name, body, event.TravelDate, seats)

	return &EmailMessage{
		RecipientEmail: address,
		RecipientName:  name,
		Subject:        subject,
		HTMLBody:       htmlBody,
		TextBody:       textBody,
	}
}

func formatRupees(paise int64) string {
	return fmt.Sprintf("INR %d.%02d", paise/100, paise%100)
}
