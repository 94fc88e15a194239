package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"autoapply-backend/internal/bootstrap"
	"autoapply-backend/internal/shared/config"
	"autoapply-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	spec := fmt.Sprintf("@every %dh", cfg.BuildIntervalHours)
	c := cron.New(cron.WithLogger(cron.DefaultLogger))
	if _, err := c.AddFunc(spec, func() { runAll(ctx, app) }); err != nil {
		log.Fatalf("cron.AddFunc: %v", err)
	}

	c.Start()
	log.Printf("queue builder started spec=%s", spec)

	// Fill the queue on startup instead of waiting for the first tick.
	go runAll(ctx, app)

	<-ctx.Done()
	c.Stop()
	log.Printf("queue builder stopped")
}

// runAll runs the builder for every user with at least one enabled rule. A
// failing user does not stop the pass; the error is logged and the loop moves
// on.
func runAll(ctx context.Context, app *bootstrap.App) {
	userIDs, err := app.RulesRepo.ListUsersWithEnabledRules(ctx)
	if err != nil {
		telemetry.Error("queuebuilder.list_users_failed", map[string]any{"error": err.Error()})
		return
	}
	if len(userIDs) == 0 {
		telemetry.Info("queuebuilder.pass_empty", nil)
		return
	}

	telemetry.Info("queuebuilder.pass_started", map[string]any{"users": len(userIDs)})
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		stats, err := app.Builder.Run(ctx, userID)
		if err != nil {
			telemetry.Error("queuebuilder.run_failed", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
			continue
		}
		telemetry.Info("queuebuilder.run_completed", map[string]any{
			"user_id":         userID,
			"rules_evaluated": stats.RulesEvaluated,
			"queued":          stats.Queued,
			"skipped":         stats.Skipped,
			"duplicates":      stats.Duplicates,
		})
	}
	telemetry.Info("queuebuilder.pass_completed", map[string]any{"users": len(userIDs)})
}
