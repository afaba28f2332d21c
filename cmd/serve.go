package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8000)")
	serveCmd.Flags().String("data-file", "", "file the uploaded dataset is persisted to and seeded from")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("data-file", serveCmd.Flags().Lookup("data-file"))
}

func serve() {
	logger := newLogger()
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hire-picker", zap.String("version", version))
	logger.Debug("starting with config", zap.Any("config", config))

	st, err := newStore(config, config.DataFile, logger)
	if err != nil {
		logger.Fatal("creating the store", zap.Error(err))
	}

	count, skipped, err := st.Seed()
	if err != nil {
		logger.Fatal("seeding candidates", zap.Error(err), zap.String("data_file", config.DataFile))
	}
	logSkipped(logger, skipped)
	logger.Info("candidates seeded", zap.Int("count", count), zap.String("data_file", config.DataFile))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(st, config.AllowedOrigins, logger)
	if err := srv.ListenAndServe(ctx, config.Listen); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "shutdown completed"))
}
