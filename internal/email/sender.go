// Package email delivers meeting reminder mail over the configured SMTP
// server.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender sends reminder email via a direct SMTP connection using go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

var reminderTemplate = template.Must(template.New("reminder").Parse(`
<html>
  <body style="font-family: sans-serif; color: #222;">
    <p>Hi {{.Name}},</p>
    <p><strong>{{.Title}}</strong> starts {{if .Minutes}}in {{.Minutes}} minutes, {{end}}at {{.Start}}.</p>
    <p>— your calendar assistant</p>
  </body>
</html>`))

type reminderData struct {
	Name    string
	Title   string
	Start   string
	Minutes int
}

// SendMeetingReminder delivers one reminder for an upcoming meeting.
func (s *SMTPSender) SendMeetingReminder(ctx context.Context, toEmail, toName, title string, start time.Time, timezone string, minutes int) error {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		location = time.UTC
	}
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, reminderData{
		Name:    toName,
		Title:   title,
		Start:   start.In(location).Format("Monday, Jan 2 at 15:04"),
		Minutes: minutes,
	}); err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}
	return s.send(ctx, toEmail, fmt.Sprintf("Reminder: %s", title), body.String())
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
