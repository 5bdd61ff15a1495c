// Package cli wires flags, environment fallbacks and prompts for the
// seedctl subcommands.
package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"golang.org/x/term"
)

const defaultBaseURL = "http://localhost:3001"

// dryRunToken stands in for a real token when no network calls will be made.
const dryRunToken = "dry-run-token"

// Env holds the environment fallbacks for connection settings.
type Env struct {
	BaseURL string `env:"PLANNIVO_API_URL"`
	Token   string `env:"PLANNIVO_ADMIN_TOKEN"`
}

// ParseEnv loads the environment fallbacks.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Common holds the flags shared by both subcommands.
type Common struct {
	BaseURL string
	Token   string
	DryRun  bool
}

// BindCommon registers the shared flags on a FlagSet, seeding defaults from
// the environment fallbacks.
func BindCommon(fs *flag.FlagSet, e Env) *Common {
	base := e.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	c := &Common{}
	fs.StringVar(&c.BaseURL, "base-url", base, "API base URL")
	fs.StringVar(&c.Token, "admin-token", e.Token, "admin JWT token")
	fs.BoolVar(&c.DryRun, "dry-run", false, "simulate without making API calls")
	return c
}

// Validate enforces the token requirement: a token is mandatory unless the
// run is a dry run.
func (c *Common) Validate() error {
	if c.Token == "" && !c.DryRun {
		return errors.New("--admin-token required (or set PLANNIVO_ADMIN_TOKEN)")
	}
	return nil
}

// EffectiveToken returns the token to hand the client, substituting a
// placeholder for tokenless dry runs.
func (c *Common) EffectiveToken() string {
	if c.Token == "" && c.DryRun {
		return dryRunToken
	}
	return c.Token
}

// ConfirmPrompt reads a y/N answer from stdin. When stdin is not a terminal
// it refuses rather than hanging, pointing the operator at --force.
func ConfirmPrompt(prompt string) bool {
	if !term.IsTerminal(int(syscall.Stdin)) {
		fmt.Fprintln(os.Stderr, "stdin is not a terminal; pass --force to skip confirmation")
		return false
	}
	return readConfirm(prompt, os.Stdin, os.Stderr)
}

func readConfirm(prompt string, in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
