package tasks

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
)

// NewSendEmail delivers the latest report summary over SMTP. With no
// SMTP host configured the task fails on every attempt, which keeps the
// retry and failure-logging paths exercised in a stock install.
func NewSendEmail(cfg *config.Config) catalog.Task {
	return catalog.Task{
		Name:        "send_email",
		Description: "Email the latest report summary to the configured recipients",
		Run: func(ctx context.Context) error {
			if cfg.SMTPHost == "" {
				return fmt.Errorf("email server not reachable: SMTP_HOST not configured")
			}
			if len(cfg.EmailTo) == 0 {
				return fmt.Errorf("no recipients: EMAIL_TO not configured")
			}

			body := reportSummary(cfg.ReportDir)
			msg := buildMessage(cfg.EmailFrom, cfg.EmailTo, "taskrunner report", body)

			addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
			var auth smtp.Auth
			if cfg.SMTPUser != "" {
				auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
			}

			if err := smtp.SendMail(addr, auth, cfg.EmailFrom, cfg.EmailTo, msg); err != nil {
				return fmt.Errorf("failed to send email via %s: %w", addr, err)
			}
			return nil
		},
	}
}

func reportSummary(reportDir string) string {
	path := latestReport(reportDir)
	if path == "" {
		return "No report has been generated yet."
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Latest report %s could not be read: %v", filepath.Base(path), err)
	}

	return fmt.Sprintf("Latest report: %s\n\n%s", filepath.Base(path), data)
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
