package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"guestbook/internal/authtool"
)

func main() {
	_ = godotenv.Load()

	tool := &authtool.Tool{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}

	stdin := int(os.Stdin.Fd())
	if term.IsTerminal(stdin) {
		tool.ReadPassword = func() (string, error) {
			fmt.Fprint(os.Stderr, "Password: ")
			password, err := term.ReadPassword(stdin)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return string(password), nil
		}
	}

	if err := tool.App().Run(os.Args); err != nil {
		code := 1
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "authtool:", msg)
		}
		os.Exit(code)
	}
}
