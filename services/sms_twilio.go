package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioNotifier sends a short copy of the reminder by WhatsApp when the number
// is in E.164 format and by SMS otherwise. Reminders without a phone are skipped.
type TwilioNotifier struct {
	api            messageCreator
	phoneNumber    string
	whatsAppNumber string
	loc            *time.Location
}

var _ Notifier = (*TwilioNotifier)(nil)

func NewTwilioNotifier(accountSid, authToken, phoneNumber, whatsAppNumber string, loc *time.Location) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &TwilioNotifier{
		api:            client.Api,
		phoneNumber:    phoneNumber,
		whatsAppNumber: whatsAppNumber,
		loc:            loc,
	}
}

func (n *TwilioNotifier) Channel() string { return "sms" }

func (n *TwilioNotifier) Notify(ctx context.Context, r TreatmentReminder) error {
	if r.UserPhone == "" {
		return ErrNotApplicable
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Use WhatsApp if phone is in E.164 format and a sender is configured
	channel := "sms"
	to := r.UserPhone
	if strings.HasPrefix(r.UserPhone, "+") && n.whatsAppNumber != "" {
		to = "whatsapp:" + r.UserPhone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(smsBody(r, n.loc))
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + n.whatsAppNumber)
	} else {
		params.SetFrom(n.phoneNumber)
	}

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		return errors.Wrapf(err, "twilio %s", channel)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("[SMS] Reminder sent to %s via %s, SID: %s", r.UserPhone, channel, *resp.Sid)
	} else {
		log.Printf("[SMS] Reminder sent to %s via %s, but no SID returned", r.UserPhone, channel)
	}
	return nil
}

func smsBody(r TreatmentReminder, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t := r.TreatmentTime.In(loc)
	return fmt.Sprintf("Hi %s, your %d minute treatment session starts at %s on %s. - Project Nebula",
		r.UserName, r.Duration, t.Format("03:04 PM"), t.Format("Mon Jan 2"))
}
