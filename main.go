package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yudhap/shape-gallery/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shape-gallery",
		Short: "Collect, browse and prune hand-drawn shape images",
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the shape gallery HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags win over the config file.
			flags := cmd.Flags()
			if v, _ := flags.GetString("addr"); flags.Changed("addr") {
				cfg.Addr = v
			}
			if v, _ := flags.GetString("public-dir"); flags.Changed("public-dir") {
				cfg.PublicDir = v
			}
			if v, _ := flags.GetString("log-level"); flags.Changed("log-level") {
				cfg.LogLevel = v
			}
			if v, _ := flags.GetString("otlp-endpoint"); flags.Changed("otlp-endpoint") {
				cfg.OTLPEndpoint = v
			}

			_ = server.InitializeLogger(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Opts{Config: cfg})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("public-dir", "public", "directory served as the web root; images are stored under <dir>/shapes")
	cmd.Flags().String("log-level", "debug", "log level")
	cmd.Flags().String("otlp-endpoint", "", "OTLP gRPC endpoint for trace export")
	return cmd
}
