package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fastygo/todo/client"
	"github.com/fastygo/todo/internal/cli"
	"github.com/fastygo/todo/internal/config"
	"github.com/fastygo/todo/pkg/logger"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "error"
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    level,
		Encoding: "console",
		Output:   os.Stderr,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.NewAPI(cfg.APIURL, client.WithTimeout(cfg.Timeout))
	notify := client.NotifierFunc(func(message string) {
		fmt.Fprintln(os.Stderr, message)
	})
	session := client.NewSession(api, notify, zapLogger.Named("client"))

	zapLogger.Debug("running command", zap.String("api", cfg.APIURL), zap.Strings("args", os.Args[1:]))
	code := cli.New(session).Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	_ = zapLogger.Sync()
	stop()
	os.Exit(code)
}
