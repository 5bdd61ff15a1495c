// Package rollback reverses a population run. The primary path consumes the
// manifest and deletes tracked resources in strict reverse-dependency order:
// bookings, then rentals, then customer packages, then users. Each delete is
// best-effort; only failed user deletions count against the run.
//
// The pattern fallback, used when no manifest exists, deletes only users
// whose email contains the test prefix. Bookings, rentals and packages
// belonging to those users are not discovered or deleted under that path —
// a known coverage gap, kept deliberately.
package rollback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"

	"github.com/plannivo/seedctl/internal/api"
	"github.com/plannivo/seedctl/internal/manifest"
	"github.com/plannivo/seedctl/internal/profile"
	"github.com/plannivo/seedctl/internal/report"
)

// ErrCancelled is returned when the operator declines the confirmation.
var ErrCancelled = errors.New("rollback cancelled")

// API is the slice of the Plannivo client the rollback needs.
type API interface {
	Verify(ctx context.Context) (api.Identity, error)
	ListUsers(ctx context.Context) ([]api.User, error)
	DeleteBooking(ctx context.Context, id string) error
	DeleteRental(ctx context.Context, id string) error
	DeleteCustomerPackage(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	DryRun() bool
}

// Confirm asks the operator to approve a destructive step.
type Confirm func(prompt string) bool

// Stats counts deletions per category.
type Stats struct {
	UsersDeleted    int
	UsersFailed     int
	BookingsDeleted int
	RentalsDeleted  int
	PackagesDeleted int
}

// Succeeded reports the run's success predicate: failed user deletions are
// the only failures that count.
func (s Stats) Succeeded() bool {
	return s.UsersFailed == 0
}

// Options configures a rollback run.
type Options struct {
	ManifestPath    string // manifest.DefaultFile if empty
	Force           bool   // skip the confirmation prompt
	PatternFallback bool   // fall back to the email-pattern search when no manifest exists
	Confirm         Confirm
	Out             io.Writer
	Now             func() time.Time // backup timestamps; time.Now if nil
}

// Runner executes the rollback workflow.
type Runner struct {
	client API
	fsys   zfilesystem.ReadWriteFileFS
	opts   Options
	out    io.Writer
	now    func() time.Time
}

// NewRunner creates a runner, filling option defaults.
func NewRunner(client API, fsys zfilesystem.ReadWriteFileFS, opts Options) *Runner {
	if opts.ManifestPath == "" {
		opts.ManifestPath = manifest.DefaultFile
	}
	if opts.Confirm == nil {
		opts.Confirm = func(string) bool { return false }
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		client: client,
		fsys:   fsys,
		opts:   opts,
		out:    opts.Out,
		now:    opts.Now,
	}
}

// Run executes the rollback and returns the deletion counters. Precondition
// failures (bad token, no manifest without fallback, declined confirmation)
// return an error; per-resource delete failures are counted and tolerated.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	report.Title(r.out, "plannivo rollback")
	if r.client.DryRun() {
		report.Warnf(r.out, "dry-run mode: no deletions will occur")
	}

	id, err := r.client.Verify(ctx)
	if err != nil {
		return stats, fmt.Errorf("verify connection: %w", err)
	}
	report.OKf(r.out, "connected as %s (role: %s)", id.Email, id.Role)
	if !api.Privileged(id.Role) {
		report.Warnf(r.out, "role %q may not have deletion permissions", id.Role)
	}

	man, err := manifest.Load(r.fsys, r.opts.ManifestPath)
	if err != nil {
		if !r.opts.PatternFallback {
			return stats, fmt.Errorf("load manifest (pass --pattern-fallback to proceed without one): %w", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			report.Warnf(r.out, "manifest unreadable (%v), using email-pattern fallback", err)
		} else {
			report.Warnf(r.out, "no manifest found, using email-pattern fallback")
		}

		if err := r.deleteByPattern(ctx, &stats); err != nil {
			return stats, err
		}
		r.summary(stats)
		return stats, nil
	}

	report.Infof(r.out, "manifest created at %s", man.CreatedAt.Format(time.RFC3339))
	report.Infof(r.out, "users: %d, bookings: %d, rentals: %d, packages: %d",
		len(man.Users), len(man.Bookings), len(man.Rentals), len(man.Packages))

	if !r.opts.Force && !r.client.DryRun() {
		if !r.opts.Confirm("This will permanently delete the tracked test data. Proceed?") {
			return stats, ErrCancelled
		}
	}

	if !r.client.DryRun() {
		backup, err := manifest.Backup(r.fsys, r.opts.ManifestPath, r.now())
		if err != nil {
			return stats, fmt.Errorf("backup manifest: %w", err)
		}
		report.Infof(r.out, "manifest backed up to %s", backup)
	}

	r.deleteBookings(ctx, man.Bookings, &stats)
	r.deleteRentals(ctx, man.Rentals, &stats)
	r.deletePackages(ctx, man.Packages, &stats)
	r.deleteUsers(ctx, man.Users, &stats)

	r.summary(stats)

	if !r.client.DryRun() && stats.Succeeded() {
		if err := manifest.Remove(r.fsys, r.opts.ManifestPath); err != nil {
			slog.Warn("manifest removal failed", "path", r.opts.ManifestPath, "err", err)
		} else {
			report.Infof(r.out, "manifest removed: %s", r.opts.ManifestPath)
		}
	}

	return stats, nil
}

func (r *Runner) deleteBookings(ctx context.Context, ids []string, st *Stats) {
	if len(ids) == 0 {
		report.Infof(r.out, "no bookings to delete")
		return
	}

	for _, id := range ids {
		if err := r.client.DeleteBooking(ctx, id); err != nil {
			slog.Warn("delete booking failed", "id", id, "err", err)
			continue
		}
		st.BookingsDeleted++
	}
	report.OKf(r.out, "deleted %d/%d bookings", st.BookingsDeleted, len(ids))
}

func (r *Runner) deleteRentals(ctx context.Context, ids []string, st *Stats) {
	if len(ids) == 0 {
		report.Infof(r.out, "no rentals to delete")
		return
	}

	for _, id := range ids {
		if err := r.client.DeleteRental(ctx, id); err != nil {
			slog.Warn("delete rental failed", "id", id, "err", err)
			continue
		}
		st.RentalsDeleted++
	}
	report.OKf(r.out, "deleted %d/%d rentals", st.RentalsDeleted, len(ids))
}

func (r *Runner) deletePackages(ctx context.Context, ids []string, st *Stats) {
	if len(ids) == 0 {
		report.Infof(r.out, "no customer packages to delete")
		return
	}

	for _, id := range ids {
		if err := r.client.DeleteCustomerPackage(ctx, id); err != nil {
			slog.Warn("delete customer package failed", "id", id, "err", err)
			continue
		}
		st.PackagesDeleted++
	}
	report.OKf(r.out, "deleted %d/%d customer packages", st.PackagesDeleted, len(ids))
}

func (r *Runner) deleteUsers(ctx context.Context, users []manifest.User, st *Stats) {
	if len(users) == 0 {
		report.Infof(r.out, "no users to delete")
		return
	}

	for _, u := range users {
		if u.ID == "" {
			continue
		}
		if err := r.client.DeleteUser(ctx, u.ID); err != nil {
			slog.Warn("delete user failed", "id", u.ID, "err", err)
			st.UsersFailed++
			continue
		}
		st.UsersDeleted++
	}
	report.OKf(r.out, "deleted %d/%d users", st.UsersDeleted, len(users))
}

// deleteByPattern deletes users whose email contains the test prefix. It
// covers users only; see the package comment for the coverage gap.
func (r *Runner) deleteByPattern(ctx context.Context, st *Stats) error {
	if !r.opts.Force && !r.client.DryRun() {
		prompt := fmt.Sprintf("Delete all users whose email contains %q?", profile.TestPrefix)
		if !r.opts.Confirm(prompt) {
			return ErrCancelled
		}
	}

	users, err := r.client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}

	var matched []manifest.User
	for _, u := range users {
		if strings.Contains(u.Email, profile.TestPrefix) {
			matched = append(matched, manifest.User{ID: u.ID, Email: u.Email})
		}
	}

	if len(matched) == 0 {
		report.Infof(r.out, "no matching users found")
		return nil
	}
	report.Infof(r.out, "found %d matching users", len(matched))

	r.deleteUsers(ctx, matched, st)
	return nil
}

func (r *Runner) summary(st Stats) {
	report.Summary(r.out, "rollback complete", []report.Row{
		{Label: "Users deleted", Value: fmt.Sprintf("%d", st.UsersDeleted)},
		{Label: "Users failed", Value: fmt.Sprintf("%d", st.UsersFailed)},
		{Label: "Bookings deleted", Value: fmt.Sprintf("%d", st.BookingsDeleted)},
		{Label: "Rentals deleted", Value: fmt.Sprintf("%d", st.RentalsDeleted)},
		{Label: "Packages deleted", Value: fmt.Sprintf("%d", st.PackagesDeleted)},
	})

	if st.Succeeded() {
		report.OKf(r.out, "rollback successful")
	} else {
		report.Failf(r.out, "some user deletions failed")
	}
}
