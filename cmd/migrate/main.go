package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/config"
	pgrepo "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/repo/postgres"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := pgrepo.Migrate(cfg.Postgres.DSN, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
