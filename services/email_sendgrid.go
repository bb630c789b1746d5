package services

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridNotifier emails reminders through the SendGrid v3 API.
type SendGridNotifier struct {
	key         string
	host        string
	from        *sgmail.Email
	loc         *time.Location
	frontendURL string
}

var _ Notifier = (*SendGridNotifier)(nil)

func NewSendGridNotifier(key, fromName, fromEmail, frontendURL string, loc *time.Location) *SendGridNotifier {
	return &SendGridNotifier{
		key:         key,
		host:        sendGridHost,
		from:        sgmail.NewEmail(fromName, fromEmail),
		loc:         loc,
		frontendURL: frontendURL,
	}
}

func (n *SendGridNotifier) Channel() string { return "email" }

func (n *SendGridNotifier) Notify(ctx context.Context, r TreatmentReminder) error {
	msg, err := RenderReminderEmail(r, n.loc, n.frontendURL)
	if err != nil {
		return err
	}

	req := sendgrid.GetRequest(n.key, sendGridEndpoint, n.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(n.prepare(msg))

	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := sendgrid.MakeRequest(req)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}

	log.Printf("[MAIL] Treatment reminder email sent to %s (status %d)", msg.To, res.StatusCode)
	return nil
}

func (n *SendGridNotifier) prepare(msg *EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.TextContent),
		sgmail.NewContent("text/html", msg.HTMLContent),
	)
	return m
}
