package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/config"
	"github.com/accountdoctor/accountdoctor/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service handles sending alerts via webhook and email
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// webhookPayload is the JSON body posted to the configured alert webhook.
type webhookPayload struct {
	Username      string `json:"username"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	PreviousScore int    `json:"previous_score"`
	CurrentScore  int    `json:"current_score"`
	PreviousGrade string `json:"previous_grade"`
	CurrentGrade  string `json:"current_grade"`
	CreatedAt     string `json:"created_at"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendAlert delivers a grade-drop alert through every configured channel.
func (s *Service) SendAlert(alert *models.Alert) error {
	var errors []string

	if s.config.AlertWebhookURL != "" {
		if err := s.sendToWebhook(alert); err != nil {
			logrus.Errorf("Failed to send webhook alert: %v", err)
			errors = append(errors, fmt.Sprintf("Webhook: %v", err))
		} else {
			logrus.Infof("Sent webhook alert for %s", alert.Username)
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(alert); err != nil {
			logrus.Errorf("Failed to send email alert: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Infof("Sent email alert for %s", alert.Username)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToWebhook(alert *models.Alert) error {
	payload := webhookPayload{
		Username:      alert.Username,
		Title:         alert.Title,
		Message:       alert.Message,
		PreviousScore: alert.PreviousScore,
		CurrentScore:  alert.CurrentScore,
		PreviousGrade: alert.PreviousGrade,
		CurrentGrade:  alert.CurrentGrade,
		CreatedAt:     alert.CreatedAt.Format(time.RFC3339),
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.config.AlertWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}

	if resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(alert *models.Alert) error {
	subject := fmt.Sprintf("AccountDoctor alert: @%s dropped to %s (%d/100)",
		alert.Username, alert.CurrentGrade, alert.CurrentScore)

	htmlBody, err := s.buildEmailHTML(alert)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(alert))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailHTML(alert *models.Alert) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>AccountDoctor Alert</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #d13438; color: white; padding: 20px; border-radius: 5px; }
        .scores { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .drop { color: #d13438; font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>@{{.Username}} needs attention</h1>
        <p>{{.Title}}</p>
    </div>

    <div class="scores">
        <p><strong>Score:</strong> {{.PreviousScore}} &rarr; <span class="drop">{{.CurrentScore}}</span></p>
        <p><strong>Grade:</strong> {{.PreviousGrade}} &rarr; <span class="drop">{{.CurrentGrade}}</span></p>
        <p>{{.Message}}</p>
    </div>

    <hr>
    <p><small>This alert was generated automatically by AccountDoctor.</small></p>
</body>
</html>
`

	t, err := template.New("alert").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, alert); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(alert *models.Alert) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("AccountDoctor Alert - @%s\n", alert.Username))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", alert.CreatedAt.Format("2006-01-02 15:04:05 UTC")))
	text.WriteString(fmt.Sprintf("Score: %d -> %d\n", alert.PreviousScore, alert.CurrentScore))
	text.WriteString(fmt.Sprintf("Grade: %s -> %s\n\n", alert.PreviousGrade, alert.CurrentGrade))
	text.WriteString(alert.Message + "\n")
	text.WriteString("\n---\nThis alert was generated automatically by AccountDoctor.\n")

	return text.String()
}
