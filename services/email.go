package services

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	texttmpl "text/template"
	"time"

	"github.com/pkg/errors"
)

const ReminderSubject = "Treatment Reminder - Project Nebula"

//go:embed templates/*
var templateFS embed.FS

var (
	reminderHTML = htmltmpl.Must(htmltmpl.ParseFS(templateFS, "templates/treatment_reminder.gohtml"))
	reminderText = texttmpl.Must(texttmpl.ParseFS(templateFS, "templates/treatment_reminder.txt"))
)

type EmailMessage struct {
	To          string
	ToName      string
	Subject     string
	TextContent string
	HTMLContent string
}

type reminderEmailData struct {
	Name        string
	Date        string
	Time        string
	Duration    int
	FrontendURL string
}

// RenderReminderEmail builds the reminder email. The treatment time is shown in loc.
func RenderReminderEmail(r TreatmentReminder, loc *time.Location, frontendURL string) (*EmailMessage, error) {
	if loc == nil {
		loc = time.Local
	}
	t := r.TreatmentTime.In(loc)
	data := reminderEmailData{
		Name:        r.UserName,
		Date:        t.Format("Monday, January 2, 2006"),
		Time:        t.Format("03:04 PM"),
		Duration:    r.Duration,
		FrontendURL: frontendURL,
	}

	var text, html bytes.Buffer
	if err := reminderText.Execute(&text, data); err != nil {
		return nil, errors.Wrap(err, "rendering reminder text")
	}
	if err := reminderHTML.Execute(&html, data); err != nil {
		return nil, errors.Wrap(err, "rendering reminder html")
	}

	return &EmailMessage{
		To:          r.UserEmail,
		ToName:      r.UserName,
		Subject:     ReminderSubject,
		TextContent: text.String(),
		HTMLContent: html.String(),
	}, nil
}
