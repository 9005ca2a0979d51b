package main

import (
	"fmt"
	"os"

	"github.com/KugaChihiro/vr-queue/internal/config"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "vrqueue: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "vrqueue",
		Usage: "Transcribe and summarize recorded meetings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config (environment variables override it)",
				EnvVars: []string{"VRQUEUE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Accept uploads and queue them for the worker",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "watch",
						Usage: "Also ingest recordings dropped into this directory",
					},
				},
			},
			{
				Name:   "worker",
				Usage:  "Run queued jobs and serve the notification channel",
				Action: workerCommand,
			},
		},
	}
}

// setup loads configuration and builds the logger shared by every command.
func setup(c *cli.Context) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format), nil
}
