// Command tokengen mints a bearer token for the protected API routes.
//
// Usage:
//
//	AUTH_SECRET=... tokengen [-subject ops] [-ttl 24h]
//
// The printed token goes in the Authorization header:
//
//	Authorization: Bearer <token>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tahmid/codefix/internal/auth"
)

func main() {
	subject := flag.String("subject", "ops", "token subject")
	ttl := flag.Duration("ttl", auth.DefaultTokenLifetime, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "tokengen: AUTH_SECRET is not set")
		os.Exit(1)
	}

	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}

	token, err := tokens.GenerateWithDuration(*subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
