package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ConsoleNotifier writes rendered reminder emails to an io.Writer instead of
// sending them. It is used when no mail provider is configured.
type ConsoleNotifier struct {
	mu          sync.Mutex
	out         io.Writer
	loc         *time.Location
	frontendURL string
	from        string
}

var _ Notifier = (*ConsoleNotifier)(nil)

func NewConsoleNotifier(from, frontendURL string, loc *time.Location) *ConsoleNotifier {
	return &ConsoleNotifier{out: os.Stdout, from: from, frontendURL: frontendURL, loc: loc}
}

func (n *ConsoleNotifier) Channel() string { return "email" }

func (n *ConsoleNotifier) Notify(_ context.Context, r TreatmentReminder) error {
	msg, err := RenderReminderEmail(r, n.loc, n.frontendURL)
	if err != nil {
		return err
	}

	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s\r\n", n.from)
	fmt.Fprintf(body, "To: %s <%s>\r\n", msg.ToName, msg.To)
	fmt.Fprintf(body, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	body.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	body.WriteString(msg.TextContent)
	body.WriteString("\r\n" + strings.Repeat("-", 79) + "\r\n")

	n.mu.Lock()
	defer n.mu.Unlock()
	_, err = io.WriteString(n.out, body.String())
	return err
}
