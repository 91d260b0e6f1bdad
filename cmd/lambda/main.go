// Package main is the AWS Lambda entry point for the translation pipeline.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/ZaguanLabs/tlrelay/config"
	"github.com/ZaguanLabs/tlrelay/internal/logger"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
)

func main() {
	// Local runs read .env; in Lambda the environment is already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.L().Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(config.ResolvePath(""))
	if err != nil {
		logger.L().Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.Init(logger.ParseLevel(cfg.Log.Level), nil)

	svc, err := config.Build(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	h := &handler{pipeline: svc.Pipeline, logger: log, invoker: lazyInvoker{}}
	lambda.Start(h.handleRequest)
}
