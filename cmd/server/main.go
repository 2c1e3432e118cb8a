package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dsmelov/securekey/internal/server"
	"github.com/dsmelov/securekey/internal/server/config"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.LoadConfig()

	// The encryption secret must never end up in shell history; if it is not
	// configured, ask for it on the terminal.
	if cfg.EncryptionSecret == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Encryption secret: ")
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			log.Fatalf("reading encryption secret: %v", err)
		}
		cfg.EncryptionSecret = string(secret)
	}
	if cfg.EncryptionSecret == "" {
		log.Fatal("encryption secret is required (ENCRYPTION_KEY or -k)")
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(context.Background())
}
