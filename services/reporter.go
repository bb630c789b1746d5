package services

import (
	"log"

	"github.com/rollbar/rollbar-go"
)

// RollbarReporter sends internal failures to Rollbar and mirrors them to the log.
type RollbarReporter struct{}

var _ ErrorReporter = RollbarReporter{}

func NewRollbarReporter(token, env, codeVersion string) RollbarReporter {
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(codeVersion)
	return RollbarReporter{}
}

func (RollbarReporter) Report(err error, extras map[string]interface{}) {
	rollbar.Error(err, extras)
	log.Printf("[ROLLBAR] %v %v", err, extras)
}

// Close flushes queued reports.
func (RollbarReporter) Close() {
	rollbar.Close()
}

// LogReporter only logs.
type LogReporter struct{}

func (LogReporter) Report(err error, extras map[string]interface{}) {
	log.Printf("[ERROR] %v %v", err, extras)
}
