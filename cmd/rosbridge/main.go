// Command rosbridge runs the router control bridge daemon: it loads the
// device inventory and credentials, then serves provisioning requests on a
// local Unix socket, translating each one into control-plane commands on the
// target router.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ispgear/rosbridge/config"
	"github.com/ispgear/rosbridge/credstore"
	"github.com/ispgear/rosbridge/dispatch"
	"github.com/ispgear/rosbridge/logger"
)

// version is injected at build time via -ldflags.
var version = "dev"

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "rosbridge",
		Short:         "Router control bridge daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/rosbridge/config.toml", "configuration file")

	root.AddCommand(serveCmd(), checkCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rosbridge:", err)
		os.Exit(1)
	}
}

// loadAll builds the validated configuration and credential store. A .env
// file in the working directory is applied first so its variables take part
// in the environment overrides.
func loadAll(ctx context.Context) (*config.Config, *credstore.Store, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}

	creds, err := credstore.Load(cfg.CredentialsFile)
	if err != nil {
		return nil, nil, err
	}

	if err := creds.Validate(cfg.DeviceNames()); err != nil {
		return nil, nil, err
	}

	return cfg, creds, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve provisioning requests on the front-door socket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, creds, err := loadAll(ctx)
			if err != nil {
				return err
			}

			log := logger.GetLogger()
			log.SetLevel(cfg.Level())

			d, err := dispatch.New(cfg, creds, log)
			if err != nil {
				return err
			}

			log.Info("starting", "version", version, "config", configPath)

			return d.ListenAndServe(ctx)
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and credential store, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, creds, err := loadAll(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("configuration OK: %d device(s), %d credential entries, socket %s\n",
				len(cfg.Devices), creds.Len(), cfg.SocketPath)

			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(*cobra.Command, []string) {
			fmt.Println("rosbridge", version)
		},
	}
}
