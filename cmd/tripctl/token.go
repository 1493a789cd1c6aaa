package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/smartmobility/tripplanner/internal/auth"
)

// tokenCommand mints a bearer token for local testing of the user endpoints.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a development access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "user id", Required: true},
			&cli.StringFlag{Name: "name", Usage: "display name"},
			&cli.DurationFlag{Name: "ttl", Value: auth.DefaultAccessTokenExpiry},
			&cli.StringFlag{Name: "signing-key", EnvVars: []string{"JWT_SIGNING_KEY"}},
			&cli.StringFlag{Name: "issuer", EnvVars: []string{"JWT_ISSUER"}},
			&cli.StringFlag{Name: "audience", EnvVars: []string{"JWT_AUDIENCE"}},
		},
		Action: func(c *cli.Context) error {
			if c.String("signing-key") == "" {
				return errors.New("--signing-key or JWT_SIGNING_KEY is required")
			}
			svc := auth.NewJWTService(auth.JWTConfig{
				SigningKey: c.String("signing-key"),
				Issuer:     c.String("issuer"),
				Audience:   c.String("audience"),
			})
			token, expiresAt, err := svc.GenerateAccessToken(auth.Principal{
				UserID: c.String("user"),
				Name:   c.String("name"),
			}, c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			fmt.Fprintf(c.App.ErrWriter, "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
}
