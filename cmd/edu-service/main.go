// main package for the edu-content-service
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/edu-content-service/internal/config"
	"github.com/book-expert/edu-content-service/internal/server"
	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
)

const (
	bootstrapLogFile = "edu-service-bootstrap.log"
	serviceLogFile   = "edu-service.log"
	flagConfig       = "config"
	flagConfigDesc   = "Path to a TOML configuration file (defaults to project.toml discovery)"
	logFmtNoDotEnv   = "No .env file loaded: %v"
	logFmtStarted    = "%s %s listening on %s"
	logMsgStopping   = "Shutdown signal received"
	logFmtStopFailed = "Failed to stop HTTP server: %v"
)

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger in %s: %w", logPath, err)
	}

	return log, nil
}

func loadConfig(path string, log *logger.Logger) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	return config.Load(log)
}

func run() error {
	configPath := flag.String(flagConfig, "", flagConfigDesc)
	flag.Parse()

	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir(), bootstrapLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	defer func() { _ = bootstrapLog.Close() }()

	// 2. Secrets such as the provider API key may live in .env
	envErr := godotenv.Load()
	if envErr != nil {
		bootstrapLog.Info(logFmtNoDotEnv, envErr)
	}

	// 3. Load configuration
	cfg, err := loadConfig(*configPath, bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 4. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, serviceLogFile)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	// 5. Wire the components and serve until interrupted
	app, err := newApplication(cfg, finalLog)
	if err != nil {
		finalLog.Error("Failed to initialize service: %v", err)

		return err
	}

	defer app.Close()

	srv := server.New(server.Options{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout(),
		WriteTimeout:    cfg.Server.WriteTimeout(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout(),
	}, app.Handler(), finalLog)

	err = srv.Start()
	if err != nil {
		finalLog.Error("Failed to start HTTP server: %v", err)

		return err
	}

	finalLog.System(logFmtStarted, cfg.Server.ServiceName, cfg.Server.Version, srv.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	finalLog.Info(logMsgStopping)

	stopErr := srv.Stop(context.Background())
	if stopErr != nil {
		finalLog.Error(logFmtStopFailed, stopErr)

		return stopErr
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
