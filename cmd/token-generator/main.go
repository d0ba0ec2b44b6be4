// Command token-generator prints a signed access token for a learner, for
// local development against the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/mastery-api/internal/config"
	"github.com/phrazzld/mastery-api/internal/service/auth"
)

func main() {
	learner := flag.String("learner", "", "Learner UUID (a random one is generated when empty)")
	secret := flag.String("secret", os.Getenv("MASTERY_AUTH_JWT_SECRET"), "JWT signing secret")
	lifetime := flag.Int("lifetime", 60, "Token lifetime in minutes")
	flag.Parse()

	token, learnerID, err := generate(*learner, *secret, *lifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token-generator: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Learner: %s\nToken: %s\n", learnerID, token)
}

func generate(learner, secret string, lifetimeMinutes int) (string, uuid.UUID, error) {
	learnerID := uuid.New()
	if learner != "" {
		parsed, err := uuid.Parse(learner)
		if err != nil {
			return "", uuid.Nil, fmt.Errorf("invalid learner id: %w", err)
		}
		learnerID = parsed
	}

	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            secret,
		TokenLifetimeMinutes: lifetimeMinutes,
	})
	if err != nil {
		return "", uuid.Nil, err
	}

	token, err := svc.GenerateToken(context.Background(), learnerID)
	if err != nil {
		return "", uuid.Nil, err
	}
	return token, learnerID, nil
}
