package populate

import (
	"context"
	"log/slog"

	"github.com/plannivo/seedctl/internal/api"
	"github.com/plannivo/seedctl/internal/report"
)

// reference-data caps, to bound the random-selection space
const (
	maxInstructors     = 10
	maxLessonServices  = 5
	maxRentalEquipment = 5
	maxPackages        = 5
)

// RunConfig holds the reference data needed to construct plausible bookings
// and rentals, fetched once per run. Each list is capped; empty lists simply
// disable the steps that need them.
type RunConfig struct {
	StudentRoleID   string
	OutsiderRoleID  string
	Instructors     []api.Instructor
	Services        []api.Service
	RentalEquipment []api.Service
	Packages        []api.Package
}

// Usable reports whether at least one role id resolved. Without any, no
// user can be created and the run must abort.
func (c RunConfig) Usable() bool {
	return c.StudentRoleID != "" || c.OutsiderRoleID != ""
}

// roleID returns the role for admin-created users, preferring outsider.
func (c RunConfig) roleID() string {
	if c.OutsiderRoleID != "" {
		return c.OutsiderRoleID
	}
	return c.StudentRoleID
}

// resolveRunConfig fetches roles, instructors, services and packages. Every
// sub-fetch is best-effort: a failure leaves that list empty rather than
// aborting resolution.
func (r *Runner) resolveRunConfig(ctx context.Context) RunConfig {
	if r.client.DryRun() {
		return dryRunConfig()
	}

	var cfg RunConfig

	roles, err := r.client.ListRoles(ctx)
	if err != nil {
		slog.Warn("fetch roles failed", "err", err)
	}
	for _, role := range roles {
		switch role.Name {
		case "student":
			cfg.StudentRoleID = role.ID
		case "outsider":
			cfg.OutsiderRoleID = role.ID
		}
	}
	report.Infof(r.out, "roles: student=%s outsider=%s", orNone(cfg.StudentRoleID), orNone(cfg.OutsiderRoleID))

	instructors, err := r.client.ListInstructors(ctx)
	if err != nil {
		slog.Warn("fetch instructors failed", "err", err)
	}
	cfg.Instructors = capped(instructors, maxInstructors)
	report.Infof(r.out, "instructors: %d found", len(cfg.Instructors))

	services, err := r.client.ListServices(ctx)
	if err != nil {
		slog.Warn("fetch services failed", "err", err)
	}
	for _, s := range services {
		if s.Rental() {
			cfg.RentalEquipment = append(cfg.RentalEquipment, s)
		} else {
			cfg.Services = append(cfg.Services, s)
		}
	}
	cfg.Services = capped(cfg.Services, maxLessonServices)
	cfg.RentalEquipment = capped(cfg.RentalEquipment, maxRentalEquipment)
	report.Infof(r.out, "services: %d lessons, %d rental equipment", len(cfg.Services), len(cfg.RentalEquipment))

	packages, err := r.client.ListPackages(ctx)
	if err != nil {
		slog.Warn("fetch packages failed", "err", err)
	}
	cfg.Packages = capped(packages, maxPackages)
	report.Infof(r.out, "packages: %d available", len(cfg.Packages))

	return cfg
}

// dryRunConfig fabricates reference data so a dry run rehearses the full
// per-user step sequence without any fetches.
func dryRunConfig() RunConfig {
	return RunConfig{
		StudentRoleID:  "dry-run-role-student",
		OutsiderRoleID: "dry-run-role-outsider",
		Instructors: []api.Instructor{
			{ID: "dry-run-instructor-1", Name: "Instructor One"},
			{ID: "dry-run-instructor-2", Name: "Instructor Two"},
		},
		Services: []api.Service{
			{ID: "dry-run-service-1", Name: "Private Lesson"},
			{ID: "dry-run-service-2", Name: "Group Lesson"},
		},
		RentalEquipment: []api.Service{
			{ID: "dry-run-equipment-1", Name: "Equipment Set", ServiceType: "rental"},
		},
		Packages: []api.Package{
			{ID: "dry-run-package-1", Name: "Ten Lesson Pack", Price: 250},
		},
	}
}

func capped[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
