// Command issue-token prints a bearer token for a user id, signed with
// JWT_SECRET. It stands in for the identity provider during development.
package main

import (
	"flag"
	"fmt"
	"os"

	"auction-engine/internal/auth"
	"auction-engine/internal/config"
)

func main() {
	userID := flag.String("user", "", "user id to issue the token for")
	name := flag.String("name", "", "display name stored in the token")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: issue-token -user <id> [-name <name>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL).Generate(*userID, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
