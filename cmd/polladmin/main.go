// Command polladmin is an operator CLI for the poll database: status,
// cleanup of old polls, and per-guild resets.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Re4LH/discord-bot/availbot"
	"github.com/Re4LH/discord-bot/availbot/database"
	"github.com/Re4LH/discord-bot/availbot/database/repositories"
	"github.com/Re4LH/discord-bot/availbot/logger"
	"golang.org/x/sync/errgroup"
)

const usage = `Usage: polladmin [flags] <command>

Commands:
  status            Show row counts and enabled guilds
  cleanup           Delete polls older than -days (votes cascade)
  reset <guild_id>  Delete a guild's polls and config

Flags:
`

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	configPath := flag.String("config", "config.toml", "path to config")
	days := flag.Int("days", 30, "cleanup: delete polls older than this many days")
	force := flag.Bool("force", false, "reset: skip the confirmation prompt")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := availbot.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	configs := repositories.NewConfigRepository(db.BunDB())
	polls := repositories.NewPollRepository(db.BunDB())
	votes := repositories.NewVoteRepository(db.BunDB())

	switch flag.Arg(0) {
	case "status":
		err = runStatus(ctx, configs, polls, votes)
	case "cleanup":
		err = runCleanup(ctx, polls, *days)
	case "reset":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "reset requires a guild id")
			os.Exit(2)
		}
		err = runReset(ctx, configs, polls, flag.Arg(1), *force)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func runStatus(ctx context.Context, configs repositories.ConfigRepository, polls repositories.PollRepository, votes repositories.VoteRepository) error {
	var guildCount, pollCount, voteCount int
	var enabled int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		guildCount, err = configs.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		pollCount, err = polls.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		voteCount, err = votes.Count(gctx)
		return err
	})
	g.Go(func() error {
		list, err := configs.ListEnabled(gctx)
		if err != nil {
			return err
		}
		enabled = len(list)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Guilds:        %d (%d with polls enabled)\n", guildCount, enabled)
	fmt.Printf("Stored polls:  %d\n", pollCount)
	fmt.Printf("Stored votes:  %d\n", voteCount)
	return nil
}

func runCleanup(ctx context.Context, polls repositories.PollRepository, days int) error {
	if days < 1 {
		return fmt.Errorf("days must be positive, got %d", days)
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := polls.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d polls older than %s\n", deleted, cutoff.Format("2006-01-02"))
	return nil
}

func runReset(ctx context.Context, configs repositories.ConfigRepository, polls repositories.PollRepository, guildID string, force bool) error {
	if !force {
		fmt.Printf("This deletes all polls and the config for guild %s. Type the guild id to confirm: ", guildID)
		var confirm string
		if _, err := fmt.Scanln(&confirm); err != nil || confirm != guildID {
			return fmt.Errorf("confirmation failed")
		}
	}

	deleted, err := polls.DeleteByGuild(ctx, guildID)
	if err != nil {
		return err
	}
	if err := configs.Remove(ctx, guildID); err != nil {
		return err
	}
	fmt.Printf("Deleted %d polls and the config for guild %s\n", deleted, guildID)
	return nil
}
