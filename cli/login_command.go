package main

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/ssh/terminal"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in to a taskdash API server",
	Description: "Prompts for any credentials not supplied using flags. When " +
		"not running in a terminal, both --email and --password are required.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagServer,
			Aliases: []string{"s"},
			Usage: "Log into the API server at the specified address " +
				"(required)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    flagEmail,
			Aliases: []string{"e"},
			Usage:   "Specify the email address to log in with",
		},
		&cli.StringFlag{
			Name:    flagPassword,
			Aliases: []string{"p"},
			Usage:   "Specify the password for non-interactive login",
		},
	},
	Action: login,
}

// stdinIsTerminal reports whether the user can be prompted for input.
var stdinIsTerminal = func() bool {
	return terminal.IsTerminal(int(os.Stdin.Fd()))
}

func login(c *cli.Context) error {
	address := c.String(flagServer)
	email := c.String(flagEmail)
	password := c.String(flagPassword)

	if email == "" || password == "" {
		if !stdinIsTerminal() {
			return errors.New(
				"--email and --password are required when not running in a " +
					"terminal",
			)
		}
	}
	for email == "" {
		if err := survey.AskOne(
			&survey.Input{
				Message: "Email",
			},
			&email,
		); err != nil {
			return err
		}
	}
	for password == "" {
		if err := survey.AskOne(
			&survey.Password{
				Message: "Password",
			},
			&password,
		); err != nil {
			return err
		}
	}

	store, err := getSessionStore(c.Context)
	if err != nil {
		return errors.Wrap(err, "error loading session")
	}
	client := newAPIClient(c, address, store)

	result, err := client.Auth().Login(c.Context, email, password)
	if err != nil {
		return err
	}

	if err := saveConfig(
		&config{
			APIAddress: address,
		},
	); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}
	if err := store.SetAccessToken(c.Context, &result.AccessToken); err != nil {
		return errors.Wrap(err, "error persisting session")
	}

	fmt.Printf("You are logged in as %s.\n", result.User.Name)

	return nil
}
