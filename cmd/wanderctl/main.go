package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	wanderly "github.com/wanderly/wanderly-go"
	"github.com/wanderly/wanderly-go/auth/store"
)

type options struct {
	URL         string `short:"u" long:"url" env:"WANDERLY_URL" description:"backend base URL" required:"true"`
	Credentials string `short:"c" long:"credentials" env:"WANDERLY_CREDENTIALS" description:"credential snapshot path (default ~/.wanderly/credentials.json)"`
	Verbose     bool   `short:"v" long:"verbose" description:"enable debug logging"`

	Login  loginCommand  `command:"login" description:"authenticate and persist the session"`
	Whoami whoamiCommand `command:"whoami" description:"show the authenticated identity"`
	Logout logoutCommand `command:"logout" description:"drop the persisted session"`
}

type loginCommand struct {
	Email    string `short:"e" long:"email" description:"account email" required:"true"`
	Password string `short:"p" long:"password" env:"WANDERLY_PASSWORD" description:"account password" required:"true"`
}

type whoamiCommand struct{}

type logoutCommand struct{}

func main() {
	opts := &options{}
	parser := flags.NewParser(opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}
	if err := run(opts, parser.Active.Name); err != nil {
		fmt.Fprintln(os.Stderr, "wanderctl:", err)
		os.Exit(1)
	}
}

func run(opts *options, command string) error {
	logger := zap.NewNop()
	if opts.Verbose {
		logger, _ = zap.NewDevelopment()
	}

	path := opts.Credentials
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".wanderly", "credentials.json")
	}

	client, err := wanderly.New(opts.URL,
		wanderly.WithStore(store.NewFileStore(path)),
		wanderly.WithLogger(logger),
		wanderly.OnSessionExpired(func() {
			fmt.Fprintln(os.Stderr, "session expired, run `wanderctl login` again")
		}),
	)
	if err != nil {
		return err
	}

	ctx := context.Background()
	switch command {
	case "login":
		identity, err := client.Login(ctx, opts.Login.Email, opts.Login.Password)
		if err != nil {
			return err
		}
		if identity != nil {
			fmt.Printf("logged in as %s (%s)\n", identity.Email, identity.Role)
		} else {
			fmt.Println("logged in")
		}
	case "whoami":
		identity, err := client.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\t%s\n", identity.ID, identity.Email, identity.Role)
	case "logout":
		if err := client.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
	}
	return nil
}
