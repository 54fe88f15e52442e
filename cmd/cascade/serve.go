package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cascadehq/cascade/internal/api"
	"github.com/cascadehq/cascade/internal/config"
	"github.com/cascadehq/cascade/internal/db"
	"github.com/cascadehq/cascade/internal/events"
	"github.com/cascadehq/cascade/internal/notify"
	"github.com/cascadehq/cascade/internal/notify/discord"
	"github.com/cascadehq/cascade/internal/notify/slack"
	"github.com/cascadehq/cascade/internal/overdue"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server, notification dispatcher and overdue scanner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			gdb, err := db.Connect(cfg.DB)
			if err != nil {
				return err
			}

			bus := events.NewBus(256)
			defer bus.Close()

			transports, err := buildTransports(cfg.Notify)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dispatcher := &notify.Dispatcher{DB: gdb, Bus: bus, Transports: transports}
			go dispatcher.Run(ctx)

			go func() {
				if err := overdue.RunDigest(ctx, gdb, bus, cfg.Overdue.Schedule); err != nil && ctx.Err() == nil {
					log.Printf("overdue: digest loop stopped: %v", err)
				}
			}()

			return api.Start(ctx, api.StartOpts{
				DB:        gdb,
				Bus:       bus,
				JWTSecret: cfg.Auth.JWTSecret,
				Port:      cfg.HTTP.Port,
				Out:       cmd.OutOrStdout(),
			})
		},
	}
}

// buildTransports constructs the configured chat transports.
func buildTransports(cfg config.NotifyConfig) ([]notify.Transport, error) {
	var transports []notify.Transport
	if cfg.Slack.BotToken != "" {
		t, err := slack.New(slack.Opts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, fmt.Errorf("serve: slack transport: %w", err)
		}
		transports = append(transports, t)
	}
	if cfg.Discord.BotToken != "" {
		t, err := discord.New(discord.Opts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, fmt.Errorf("serve: discord transport: %w", err)
		}
		transports = append(transports, t)
	}
	return transports, nil
}
