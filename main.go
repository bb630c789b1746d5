package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"nebula-backend/config"
	"nebula-backend/models"
	"nebula-backend/routes"
	"nebula-backend/services"
	"nebula-backend/utils"

	"github.com/gin-gonic/gin"
)

const codeVersion = "1.0.0"

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTExpiry)

	config.ConnectDB(cfg.DatabaseURL)
	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventAttendee{},
		&models.EducationalResource{},
		&models.ResearchUpdate{},
		&models.TreatmentPlan{},
		&models.TreatmentSession{},
		&models.ReminderLog{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var reporter services.ErrorReporter = services.LogReporter{}
	if cfg.RollbarToken != "" {
		rb := services.NewRollbarReporter(cfg.RollbarToken, cfg.Env, codeVersion)
		defer rb.Close()
		reporter = rb
	}

	deliveries := services.NewGormDeliveryLog(config.DB)
	scheduler := services.NewReminderScheduler(services.SchedulerOptions{
		Lead:      cfg.ReminderLead,
		Notifiers: buildNotifiers(cfg),
		Log:       deliveries,
		Reporter:  reporter,
	})
	sessions := services.NewSessionManager(services.NewGormSessionStore(config.DB))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()

	r := routes.SetupRouter(cfg, routes.Dependencies{
		Scheduler:  scheduler,
		Sessions:   sessions,
		Deliveries: deliveries,
	})
	printRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	sessions.Shutdown()
	wg.Wait()
}

// buildNotifiers picks the delivery channels the configuration allows.
// Email always goes out; without a SendGrid key it is printed to stdout.
func buildNotifiers(cfg *config.Config) []services.Notifier {
	loc := time.Local

	var notifiers []services.Notifier
	if cfg.SendGridKey != "" {
		notifiers = append(notifiers, services.NewSendGridNotifier(cfg.SendGridKey, cfg.EmailFromName, cfg.EmailFrom, cfg.FrontendURL, loc))
	} else {
		log.Println("[MAIL] SENDGRID_API_KEY not set, reminder emails will be printed to stdout")
		notifiers = append(notifiers, services.NewConsoleNotifier(cfg.EmailFrom, cfg.FrontendURL, loc))
	}

	if cfg.SMSEnabled() {
		notifiers = append(notifiers, services.NewTwilioNotifier(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, cfg.TwilioWhatsAppNumber, loc))
	}
	return notifiers
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
