// Command admin creates a confirmed administrator account in the configured
// database.
package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/contactkeeper/internal/cli"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server"
	"github.com/dmitrijs2005/contactkeeper/internal/server/auth"
	"github.com/dmitrijs2005/contactkeeper/internal/server/config"
	"github.com/dmitrijs2005/contactkeeper/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if cfg.InMemory() {
		log.Fatalf("a database DSN is required (-d or CONTACTKEEPER_DATABASE_DSN)")
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	rm, err := server.OpenStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer rm.Close()

	us := services.NewUserService(rm, auth.NewBcryptHasher(), nil, logger)

	if _, err := cli.SeedAdmin(ctx, bufio.NewReader(os.Stdin), os.Stdout, us); err != nil {
		log.Printf("%v", err)
		rm.Close()
		os.Exit(1)
	}
}
