package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ozodbekdev/kinokod/internal/bot"
	"github.com/ozodbekdev/kinokod/internal/catalog"
	"github.com/ozodbekdev/kinokod/internal/config"
	"github.com/ozodbekdev/kinokod/internal/directory"
	"github.com/ozodbekdev/kinokod/internal/logger"
	"github.com/ozodbekdev/kinokod/internal/stats"
	"github.com/ozodbekdev/kinokod/internal/store"
	"github.com/ozodbekdev/kinokod/internal/subscription"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "kinokod",
	Short: "kinokod - subscription-gated film code bot for Telegram",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot (polling)",
	RunE:  runBot,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE:  runInit,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.AddCommand(runCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := config.SaveConfig(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("bot token not set: set KINOKOD_BOT_TOKEN / BOT_TOKEN or telegram.token in %s", config.ConfigPath())
	}

	log, err := logger.InitLogger(cfg.Workspace, debugFlag || os.Getenv("DEBUG") != "")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	sugar := log.Sugar()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	st, err := store.Connect(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	connectCancel()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			sugar.Warnf("[kinokod] store disconnect: %v", err)
		}
	}()

	api, err := bot.NewAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	admins := cfg.AdminSet()
	checker := subscription.NewTelegramChecker(api, sugar)
	gate := subscription.NewGate(st.Channels, st.Users, checker, admins, sugar)
	dir := directory.New(st.Channels, api)
	cat := catalog.New(st.Films)
	collector := stats.NewCollector(st.Channels, st.Users, st.Films)

	router := bot.NewRouter(api, gate, dir, cat, collector, admins, sugar)
	b := bot.New(api, router, cfg.Telegram, sugar)
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("start bot: %w", err)
	}
	defer b.Stop()

	if cfg.Stats.Enabled {
		reporter := stats.NewReporter(collector, cfg.Stats.Spec, sugar)
		if err := reporter.Start(); err != nil {
			sugar.Warnf("[kinokod] stats reporter disabled: %v", err)
		} else {
			defer reporter.Stop()
		}
	}

	sugar.Infof("[kinokod] running, %d admin(s) configured", len(admins))
	<-ctx.Done()
	sugar.Infof("[kinokod] shutting down")
	return nil
}
