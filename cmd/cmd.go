// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles first-run setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Write config.toml when missing, create the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// migrateCommand handles schema migrations
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database schema migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply pending migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "to",
						Usage: "Stop at this version (default: latest)",
					},
				},
				Action: r.MigrateUp,
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Action: r.MigrateDown,
			},
			{
				Name:  "status",
				Usage: "List known migrations and whether they are applied",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MigrateStatus,
			},
		},
	}
}

// serveCommand runs the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the web UI in the default browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// loginCommand signs the CLI in against a running server
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in (or create an account with --signup) and save the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Account email",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Account password",
				Sources:  cli.EnvVars("ROLODEX_PASSWORD"),
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "signup",
				Usage: "Create the account first",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Display name for a new account",
			},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "End the saved session",
		Action: r.Logout,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in account",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Whoami,
	}
}

// contactFlags are the editable contact fields shared by add and edit.
func contactFlags(nameRequired bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Contact name", Required: nameRequired},
		&cli.StringFlag{Name: "email", Usage: "Email address"},
		&cli.StringFlag{Name: "phone", Usage: "Phone number"},
		&cli.StringFlag{Name: "address", Usage: "Street address"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
	}
}

// contactsCommand handles contact operations through the API
func contactsCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}

	return &cli.Command{
		Name:    "contacts",
		Aliases: []string{"c"},
		Usage:   "Contact operations for the signed-in account",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List contacts, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only show contacts whose name, email or phone contains this text",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ContactsList,
			},
			{
				Name:   "add",
				Usage:  "Create a contact",
				Flags:  contactFlags(true),
				Action: r.ContactsAdd,
			},
			{
				Name:      "edit",
				Usage:     "Change the given fields of a contact; an empty value clears an optional field",
				Arguments: idArg,
				Flags:     contactFlags(false),
				Action:    r.ContactsEdit,
			},
			{
				Name:      "rm",
				Usage:     "Delete a contact",
				Arguments: idArg,
				Action:    r.ContactsRemove,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/rolodex-tui.log",
			},
		},
		Action: r.TUI,
	}
}
