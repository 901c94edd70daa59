// Package authtool implements the authtool command: password hashing and
// token issuance from the shell.
package authtool

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"guestbook/internal/auth"
	"guestbook/internal/config"
)

type Tool struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// ReadPassword prompts for a password without echo. When nil the password
	// is read as one line from In.
	ReadPassword func() (string, error)
}

func (t *Tool) App() *cli.App {
	return &cli.App{
		Name:      "authtool",
		Usage:     "hash passwords and issue or inspect access tokens",
		Reader:    t.In,
		Writer:    t.Out,
		ErrWriter: t.Err,
		// Exit codes are handled by the caller, not by os.Exit inside Run.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:  "hash",
				Usage: "print a bcrypt record for a password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Usage: "plaintext; prompted for when omitted"},
					&cli.IntFlag{Name: "cost", Usage: "bcrypt cost", EnvVars: []string{"BCRYPT_COST"}},
				},
				Action: t.hash,
			},
			{
				Name:  "verify",
				Usage: "check a password against a bcrypt record",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Usage: "plaintext; prompted for when omitted"},
					&cli.StringFlag{Name: "record", Required: true},
				},
				Action: t.verify,
			},
			{
				Name:  "issue",
				Usage: "issue a signed token for a subject",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true},
				},
				Action: t.issue,
			},
			{
				Name:  "inspect",
				Usage: "verify a token and print its subject",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
				},
				Action: t.inspect,
			},
		},
	}
}

func (t *Tool) hash(c *cli.Context) error {
	hasher, err := auth.NewPasswordHasher(c.Int("cost"))
	if err != nil {
		return err
	}

	password, err := t.password(c)
	if err != nil {
		return err
	}

	record, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(t.Out, record)
	return err
}

func (t *Tool) verify(c *cli.Context) error {
	hasher, err := auth.NewPasswordHasher(0)
	if err != nil {
		return err
	}

	password, err := t.password(c)
	if err != nil {
		return err
	}

	ok, err := hasher.Verify(password, c.String("record"))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(t.Out, ok); err != nil {
		return err
	}
	if !ok {
		return cli.Exit("password does not match", 1)
	}
	return nil
}

func (t *Tool) issue(c *cli.Context) error {
	tokens, err := tokenService()
	if err != nil {
		return err
	}

	issued, err := tokens.Issue(c.String("subject"))
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(t.Out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(issued)
}

func (t *Tool) inspect(c *cli.Context) error {
	tokens, err := tokenService()
	if err != nil {
		return err
	}

	subject, err := tokens.Verify(c.String("token"))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(t.Out, subject)
	return err
}

func (t *Tool) password(c *cli.Context) (string, error) {
	if c.IsSet("password") {
		return c.String("password"), nil
	}
	if t.ReadPassword != nil {
		return t.ReadPassword()
	}

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && errors.Is(err, io.EOF) {
		return "", errors.New("no password given")
	}
	return line, nil
}

func tokenService() (*auth.TokenService, error) {
	cfg, err := config.LoadAuth()
	if err != nil {
		return nil, err
	}
	return auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
}
