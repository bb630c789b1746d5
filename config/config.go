package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env            string
	Port           string
	GinMode        string
	DatabaseURL    string
	JWTSecret      string
	JWTExpiry      time.Duration
	AllowedOrigins []string
	FrontendURL    string

	EmailFrom     string
	EmailFromName string
	SendGridKey   string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioPhoneNumber    string
	TwilioWhatsAppNumber string

	RollbarToken string

	// How long before a treatment the reminder goes out.
	ReminderLead time.Duration
}

func Load() *Config {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("EMAIL_FROM", "noreply@projectnebula.com")
	v.SetDefault("EMAIL_FROM_NAME", "Project Nebula")
	v.SetDefault("REMINDER_LEAD_MINUTES", 30)
	v.AutomaticEnv()

	return &Config{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		GinMode:        v.GetString("GIN_MODE"),
		DatabaseURL:    v.GetString("DB_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTExpiry:      time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		FrontendURL:    v.GetString("FRONTEND_URL"),

		EmailFrom:     v.GetString("EMAIL_FROM"),
		EmailFromName: v.GetString("EMAIL_FROM_NAME"),
		SendGridKey:   v.GetString("SENDGRID_API_KEY"),

		TwilioAccountSID:     v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:    v.GetString("TWILIO_PHONE_NUMBER"),
		TwilioWhatsAppNumber: v.GetString("TWILIO_WHATSAPP_NUMBER"),

		RollbarToken: v.GetString("ROLLBAR_TOKEN"),

		ReminderLead: time.Duration(v.GetInt("REMINDER_LEAD_MINUTES")) * time.Minute,
	}
}

// SMSEnabled reports whether Twilio credentials and a sender number are present.
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" &&
		(c.TwilioPhoneNumber != "" || c.TwilioWhatsAppNumber != "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
