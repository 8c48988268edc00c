package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hiveguard/hiveguard/internal/bot"
	"github.com/hiveguard/hiveguard/internal/setup"
	"github.com/urfave/cli/v3"
)

const (
	// BotLogDir specifies where bot log files are stored.
	BotLogDir = "logs/bot_logs"

	// ToolLogDir specifies where one-shot admin command logs are stored.
	ToolLogDir = "logs/tool_logs"
)

func main() {
	app := &cli.Command{
		Name:  "hiveguard",
		Usage: "Start the hiveguard raid response bot",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "shard-id",
				Value: -1,
				Usage: "Override the configured shard index",
			},
			&cli.IntFlag{
				Name:  "shard-count",
				Value: -1,
				Usage: "Override the configured shard count",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runBot(ctx, int(c.Int("shard-id")), int(c.Int("shard-count")))
		},
		Commands: []*cli.Command{
			{
				Name:  "action-log",
				Usage: "Set the action log channel for a guild",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "guild", Required: true, Usage: "Guild ID"},
					&cli.UintFlag{Name: "channel", Required: true, Usage: "Channel ID receiving sweep reports"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runSetActionLog(ctx, uint64(c.Uint("guild")), uint64(c.Uint("channel")))
				},
			},
			{
				Name:  "sweeps",
				Usage: "List recent ban sweeps for a guild",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "guild", Required: true, Usage: "Guild ID"},
					&cli.IntFlag{Name: "limit", Value: 10, Usage: "Maximum rows to show"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runListSweeps(ctx, uint64(c.Uint("guild")), int(c.Int("limit")))
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func runBot(ctx context.Context, shardID, shardCount int) error {
	// Initialize application with required dependencies
	app, err := setup.InitializeApp(ctx, BotLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup()

	// Command line flags take precedence over the config file so one binary
	// can serve every shard slot
	if shardCount >= 1 {
		app.Config.Discord.ShardCount = shardCount
	}

	if shardID >= 0 {
		app.Config.Discord.ShardID = shardID
	}

	if err := app.Config.Validate(); err != nil {
		return err
	}

	// Create bot instance
	discordBot, err := bot.New(app.Config, app.DB, app.RedisManager, app.Logger)
	if err != nil {
		log.Printf("Failed to create bot: %v", err)
		return err
	}

	// Start the bot and connect to Discord
	if err := discordBot.Start(ctx); err != nil {
		log.Printf("Failed to start bot: %v", err)
		return err
	}

	log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	// Wait for interrupt signal to gracefully shutdown the bot
	// This ensures all pending events are processed before closing
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	// Cleanly close down the Discord session
	discordBot.Close(ctx)

	return nil
}

func runSetActionLog(ctx context.Context, guildID, channelID uint64) error {
	app, err := setup.InitializeApp(ctx, ToolLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup()

	if err := app.DB.Model().ActionLog().Upsert(ctx, guildID, channelID); err != nil {
		return err
	}

	fmt.Printf("Action log for guild %d set to channel %d\n", guildID, channelID)

	return nil
}

func runListSweeps(ctx context.Context, guildID uint64, limit int) error {
	app, err := setup.InitializeApp(ctx, ToolLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup()

	sweeps, err := app.DB.Model().RaidLog().GetGuildSweeps(ctx, guildID, limit)
	if err != nil {
		return err
	}

	if len(sweeps) == 0 {
		fmt.Printf("No recorded sweeps for guild %d\n", guildID)
		return nil
	}

	for _, sweep := range sweeps {
		fmt.Printf("%s  banned %d/%d  %s\n",
			sweep.Timestamp.Format("2006-01-02 15:04:05"),
			sweep.BannedCount, sweep.CandidateCount, sweep.LogURL)
	}

	return nil
}
