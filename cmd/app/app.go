package main

import (
	"fmt"
	"os"

	"github.com/DRSN-tech/product-intelligence/internal/app"
	config "github.com/DRSN-tech/product-intelligence/internal/cfg"
	"github.com/DRSN-tech/product-intelligence/pkg/logger"
)

// @title			Product Intelligence Engine API
// @version		1.0
// @description	Рекомендации, классификация и автотегирование товаров каталога.
// @BasePath		/api/v1
func main() {
	log, err := logger.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	code := run(log)
	_ = log.Sync()
	os.Exit(code)
}

func run(log logger.Logger) int {
	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		return 1
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		return 1
	}

	if err := application.Run(); err != nil {
		return 1
	}

	return 0
}
