package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rafiq-app/rafiq/internal/app"
	"go.uber.org/fx"
)

func main() {
	configFlag := flag.String("config", "", "config file path (default ~/.rafiq/config.toml)")
	flag.Parse()

	// Secrets stay in the environment; .env is a development convenience.
	_ = godotenv.Load()

	fxApp := fx.New(
		app.Module(app.Params{
			ConfigPath:   *configFlag,
			DatabaseURL:  os.Getenv("RAFIQ_DATABASE_URL"),
			DatabaseAuth: os.Getenv("RAFIQ_DATABASE_AUTH"),
		}),
	)

	fxApp.Run()
}
