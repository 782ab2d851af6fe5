package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/metrics"
	"github.com/spigell/resume-screener/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive web screener",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().Int64("max-upload-mb", 20, "maximum request size for uploads in megabytes")
	serveCmd.Flags().Int("workers", 4, "parallel PDF extraction workers")

	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("serve.max-upload-mb", serveCmd.Flags().Lookup("max-upload-mb"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if workers, err := cmd.Flags().GetInt("workers"); err == nil && cmd.Flags().Changed("workers") {
		config.Workers = workers
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	pipeline, err := newPipeline(ctx, config, logger, pipelineOptions{})
	if err != nil {
		logger.Fatal("preparing providers", zap.Error(err))
	}

	metrics.Initialize()

	server, err := web.New(web.Config{
		Service:     app,
		Version:     version,
		MaxUploadMB: config.Serve.MaxUploadMB,
	}, pipeline, logger)
	if err != nil {
		logger.Fatal("building web server", zap.Error(err))
	}

	logger.Info("starting the resume-screener", zap.String("version", version), zap.String("addr", config.Serve.Addr))

	if err := server.Run(ctx, config.Serve.Addr); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
