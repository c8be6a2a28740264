// cmd/hashpassword/main.go
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/logger"
)

// Prints a bcrypt hash for provisioning a user row by hand. The password must
// pass the same strength rules as the API and is hashed with BCRYPT_COST.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: go run ./cmd/hashpassword <password>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg)

	passwords := auth.NewPasswordManager(cfg)
	hash, err := passwords.HashPassword(os.Args[1])
	if err != nil {
		log.WithError(err).Fatal("Password rejected")
	}

	if err := passwords.VerifyPassword(os.Args[1], hash); err != nil {
		log.WithError(err).Fatal("Hash verification failed")
	}

	log.WithField("cost", cfg.Security.BcryptCost).Info("Hash verified")
	fmt.Println(hash)
}
