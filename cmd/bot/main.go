package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pingcrew/pingcrew/internal/bot"
	"github.com/pingcrew/pingcrew/internal/discord/rate"
	"github.com/pingcrew/pingcrew/internal/setup"
)

func main() {
	ctx := context.Background()

	// Initialize application with required dependencies
	app, err := setup.InitializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup()

	// Cooldown state is process-local; a restart simply lifts cooldowns early
	limiter := rate.New(map[rate.Action]time.Duration{
		rate.ActionCreate: time.Duration(app.Config.Cooldowns.CreateSeconds) * time.Second,
		rate.ActionNotify: time.Duration(app.Config.Cooldowns.NotifySeconds) * time.Second,
	})

	discordBot, err := bot.New(app.Config.Bot.Token, app.DB, limiter, app.Logger)
	if err != nil {
		log.Printf("Failed to create bot: %v", err)
		return
	}

	if err := discordBot.Start(ctx); err != nil {
		log.Printf("Failed to start bot: %v", err)
		return
	}

	log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	// Wait for interrupt signal to gracefully shutdown the bot
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	discordBot.Close(ctx)
}
