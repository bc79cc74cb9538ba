package main

import (
	"flag"
	"log"
	"os"

	"github.com/orcaclubpro/trenddrop-sub002/internal/application"
	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
)

var (
	Version = "v0.1.0"
)

func main() {
	env := flag.String("env", envOr(consts.ENV_APP_ENV, consts.ENV_DEVELOPMENT), "runtime environment (development|production)")
	cfgPath := flag.String("config", envOr(consts.ENV_CONFIG_PATH, consts.DEFAULT_CONFIG_PATH), "config file path")
	flag.Parse()

	log.Printf("trendtracker %s starting (env=%s config=%s)", Version, *env, *cfgPath)

	app := application.NewApp(*env, *cfgPath)
	if err := app.Run(); err != nil {
		log.Fatalf("trendtracker exited with error: %v", err)
	}
	log.Println("trendtracker exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
