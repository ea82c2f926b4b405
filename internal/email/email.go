package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func send(cfg SMTPConfig, to, subject, contentType, body string) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	msg := strings.Join([]string{
		"From: " + cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: " + contentType + "; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	var a smtp.Auth
	if cfg.User != "" {
		a = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	return smtp.SendMail(addr, a, cfg.From, []string{to}, []byte(msg))
}

func SendText(cfg SMTPConfig, to, subject, body string) error {
	return send(cfg, to, subject, "text/plain", body)
}

func SendHTML(cfg SMTPConfig, to, subject, body string) error {
	return send(cfg, to, subject, "text/html", body)
}

// SendSupervisionScheduled notifies one party that a supervision
// session was booked.
func SendSupervisionScheduled(cfg SMTPConfig, to, recipientName, otherName string, date time.Time, supervisorSide bool) error {
	formatted := date.Format("Monday, January 2, 2006 15:04")
	var body string
	if supervisorSide {
		body = fmt.Sprintf(`<h2>Supervision Session Scheduled</h2>
<p>Dear %s,</p>
<p>You have scheduled a supervision session with %s.</p>
<p><strong>Date and Time:</strong> %s</p>
<p>Regards,<br>Internship Management System</p>`, recipientName, otherName, formatted)
	} else {
		body = fmt.Sprintf(`<h2>Supervision Session Scheduled</h2>
<p>Dear %s,</p>
<p>Your supervision session has been scheduled with your supervisor, %s.</p>
<p><strong>Date and Time:</strong> %s</p>
<p>Please be prepared and punctual for your session.</p>
<p>Regards,<br>Internship Management System</p>`, recipientName, otherName, formatted)
	}
	return SendHTML(cfg, to, "Internship Supervision Scheduled", body)
}

// SendSupervisionDateNotification announces a new coordinator-wide
// supervision date window.
func SendSupervisionDateNotification(cfg SMTPConfig, to string, start, end time.Time) error {
	body := fmt.Sprintf(`<h2>Supervision Dates Notification</h2>
<p>New supervision dates have been scheduled:</p>
<p><strong>From:</strong> %s</p>
<p><strong>To:</strong> %s</p>
<p>Please check the system for more details.</p>`,
		start.Format("January 2, 2006 15:04"),
		end.Format("January 2, 2006 15:04"))
	return SendHTML(cfg, to, "Supervision Dates Updated", body)
}
