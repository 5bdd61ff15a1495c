package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/core/pkg/zfilesystem"

	"github.com/plannivo/seedctl/internal/api"
	"github.com/plannivo/seedctl/internal/cli"
	"github.com/plannivo/seedctl/internal/manifest"
	"github.com/plannivo/seedctl/internal/populate"
	"github.com/plannivo/seedctl/internal/rollback"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := zapp.New(zapp.WithName("seedctl"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	code := 1
	if len(os.Args) > 1 {
		code = run(ctx, os.Args[1], os.Args[2:])
	} else {
		usage()
	}

	if err := app.Close(); err != nil {
		slog.Error("shutdown", "err", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}

func run(ctx context.Context, cmd string, args []string) int {
	switch cmd {
	case "version":
		fmt.Printf("seedctl %s\n", version)
		return 0
	case "populate":
		return runPopulate(ctx, args)
	case "rollback":
		return runRollback(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "seedctl: unknown command %q\n", cmd)
		usage()
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: seedctl <command> [flags]

commands:
  populate   create synthetic users, wallets, packages, bookings and rentals
  rollback   delete everything a previous populate run created
  version    print the build version`)
}

func runPopulate(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)

	envs, err := cli.ParseEnv()
	if err != nil {
		slog.Error("config", "err", err)
		return 1
	}

	common := cli.BindCommon(fs, envs)
	users := fs.Int("users", populate.DefaultUsers, "number of synthetic users to create")
	fs.Parse(args)

	if err := common.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "seedctl:", err)
		return 1
	}
	warnStaleToken(common)

	client := api.New(api.Config{
		BaseURL: common.BaseURL,
		Token:   common.EffectiveToken(),
		DryRun:  common.DryRun,
	})

	runner := populate.NewRunner(client, zfilesystem.NewOSFileSystem("."), populate.Options{
		Users:    *users,
		Manifest: manifest.DefaultFile,
	})

	stats, err := runner.Run(ctx)
	if err != nil {
		slog.Error("populate", "err", err)
		return 1
	}
	if !stats.Succeeded() {
		return 1
	}
	return 0
}

func runRollback(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("rollback", flag.ExitOnError)

	envs, err := cli.ParseEnv()
	if err != nil {
		slog.Error("config", "err", err)
		return 1
	}

	common := cli.BindCommon(fs, envs)
	manifestFile := fs.String("manifest-file", manifest.DefaultFile, "path to the population manifest")
	force := fs.Bool("force", false, "skip the confirmation prompt")
	patternFallback := fs.Bool("pattern-fallback", false, "delete users by email pattern when no manifest exists")
	fs.Parse(args)

	if err := common.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "seedctl:", err)
		return 1
	}
	warnStaleToken(common)

	client := api.New(api.Config{
		BaseURL: common.BaseURL,
		Token:   common.EffectiveToken(),
		DryRun:  common.DryRun,
	})

	// the filesystem is rooted at the manifest's directory so backups land
	// next to the manifest
	dir, file := filepath.Split(*manifestFile)
	if dir == "" {
		dir = "."
	}

	runner := rollback.NewRunner(client, zfilesystem.NewOSFileSystem(dir), rollback.Options{
		ManifestPath:    file,
		Force:           *force,
		PatternFallback: *patternFallback,
		Confirm:         cli.ConfirmPrompt,
	})

	stats, err := runner.Run(ctx)
	if err != nil {
		slog.Error("rollback", "err", err)
		return 1
	}
	if !stats.Succeeded() {
		return 1
	}
	return 0
}

// warnStaleToken inspects the admin token locally and warns when it looks
// expired. Opaque tokens are fine; /auth/me remains the real check.
func warnStaleToken(c *cli.Common) {
	if c.DryRun || c.Token == "" {
		return
	}

	info, err := api.InspectToken(c.Token)
	if err != nil {
		slog.Debug("admin token is not a parseable JWT", "err", err)
		return
	}
	if info.Expired(time.Now()) {
		slog.Warn("admin token appears expired", "subject", info.Subject, "expiry", info.Expiry)
	}
}
