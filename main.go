package main

import (
	"context"
	"fmt"
	"os"

	"github.com/boredapes/ctaplanner/internal/app"
	"github.com/boredapes/ctaplanner/internal/config"
	"github.com/boredapes/ctaplanner/internal/database"
	"github.com/boredapes/ctaplanner/pkg/user"
	log "github.com/sirupsen/logrus"
)

const accountPasswordEnv = "CTA_ACCOUNT_PASSWORD"

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	ctx := context.Background()

	if len(os.Args) > 1 && os.Args[1] == "create-account" {
		if err := createAccount(ctx, os.Args[2:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	application, err := app.NewApplication(ctx)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}

// createAccount registers an officer account for the local authenticator.
func createAccount(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s create-account <email> (password is read from %s)", os.Args[0], accountPasswordEnv)
	}
	password := os.Getenv(accountPasswordEnv)
	if password == "" {
		return fmt.Errorf("%s is not set", accountPasswordEnv)
	}

	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	account, err := user.NewService(user.NewRepository(db)).CreateAccount(ctx, args[0], password)
	if err != nil {
		return err
	}
	log.Infof("Created account %s", account.Email)
	return nil
}
