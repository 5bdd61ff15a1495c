// Package populate implements the population workflow: create synthetic
// users through the Plannivo API and give each one a wallet balance, an
// optional package, a handful of bookings and an optional rental, recording
// every created resource in the rollback manifest before reporting it.
package populate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"

	"github.com/plannivo/seedctl/internal/api"
	"github.com/plannivo/seedctl/internal/manifest"
	"github.com/plannivo/seedctl/internal/profile"
	"github.com/plannivo/seedctl/internal/report"
)

// DefaultUsers is the user count of a full load-test population.
const DefaultUsers = 2000

const (
	batchSize = 50

	minTopup = 500
	maxTopup = 3000

	packageChance = 0.6
	rentalChance  = 0.7

	maxBookings        = 5
	hourlyRate         = 80
	bookingWindowDays  = 30
	rentalWindowDays   = 14
	minRentalHours     = 2
	maxRentalHours     = 8
	minRentalPrice     = 50
	maxRentalPrice     = 200
)

var (
	startHours = []int{9, 10, 11, 14, 15, 16, 17}
	durations  = []float64{0.5, 1, 1.5, 2}
)

// API is the slice of the Plannivo client the populator needs.
type API interface {
	Verify(ctx context.Context) (api.Identity, error)
	ListRoles(ctx context.Context) ([]api.Role, error)
	ListInstructors(ctx context.Context) ([]api.Instructor, error)
	ListServices(ctx context.Context) ([]api.Service, error)
	ListPackages(ctx context.Context) ([]api.Package, error)
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	CreateUser(ctx context.Context, req api.CreateUserRequest) (string, error)
	Deposit(ctx context.Context, userID string, req api.DepositRequest) error
	PurchasePackage(ctx context.Context, req api.PurchaseRequest) (string, error)
	CreateBooking(ctx context.Context, req api.BookingRequest) (string, error)
	CreateRental(ctx context.Context, req api.RentalRequest) (string, error)
	DryRun() bool
}

// Stats accumulates the counters of one population run.
type Stats struct {
	UsersCreated      int
	UsersFailed       int
	TopupsCreated     int
	PackagesPurchased int
	BookingsCreated   int
	RentalsCreated    int
	TotalTopupAmount  float64
	TotalRevenue      float64
}

// Succeeded reports the run's success predicate: user-creation failures are
// the only ones that count.
func (s Stats) Succeeded() bool {
	return s.UsersFailed == 0
}

// Map returns the manifest representation of the counters.
func (s Stats) Map() map[string]float64 {
	return map[string]float64{
		"users_created":      float64(s.UsersCreated),
		"users_failed":       float64(s.UsersFailed),
		"topups_created":     float64(s.TopupsCreated),
		"packages_purchased": float64(s.PackagesPurchased),
		"bookings_created":   float64(s.BookingsCreated),
		"rentals_created":    float64(s.RentalsCreated),
		"total_topup_amount": s.TotalTopupAmount,
		"total_revenue":      s.TotalRevenue,
	}
}

// Options configures a population run.
type Options struct {
	Users     int    // number of users to create; DefaultUsers if zero
	BatchSize int    // progress-reporting batch size; 50 if zero
	Manifest  string // manifest path; manifest.DefaultFile if empty
	Rand      profile.Rand
	Out       io.Writer
}

// Runner executes the population workflow. Batches are a progress-reporting
// grouping only: users are processed strictly one at a time, each through
// the fixed chain create → top-up → package → bookings → rental.
type Runner struct {
	client API
	fsys   zfilesystem.ReadWriteFileFS
	opts   Options
	rand   profile.Rand
	out    io.Writer
}

// NewRunner creates a runner, filling option defaults.
func NewRunner(client API, fsys zfilesystem.ReadWriteFileFS, opts Options) *Runner {
	if opts.Users <= 0 {
		opts.Users = DefaultUsers
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = batchSize
	}
	if opts.Manifest == "" {
		opts.Manifest = manifest.DefaultFile
	}
	if opts.Rand == nil {
		opts.Rand = profile.NewSource(uint64(time.Now().UnixNano()))
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	return &Runner{
		client: client,
		fsys:   fsys,
		opts:   opts,
		rand:   opts.Rand,
		out:    opts.Out,
	}
}

// Run executes the full population and returns the aggregate counters.
// Only precondition failures return an error; per-resource failures are
// counted and tolerated.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	report.Title(r.out, "plannivo population")
	if r.client.DryRun() {
		report.Warnf(r.out, "dry-run mode: no API calls will be made")
	}

	id, err := r.client.Verify(ctx)
	if err != nil {
		return stats, fmt.Errorf("verify connection: %w", err)
	}
	report.OKf(r.out, "connected as %s (role: %s)", id.Email, id.Role)
	if !api.Privileged(id.Role) {
		report.Warnf(r.out, "role %q may not have full permissions", id.Role)
	}

	cfg := r.resolveRunConfig(ctx)
	if !cfg.Usable() {
		return stats, errors.New("no usable role id, cannot create users")
	}

	gen := profile.New(r.rand)
	profiles := make([]profile.Profile, r.opts.Users)
	for i := range profiles {
		profiles[i] = gen.Generate(i)
	}

	man := manifest.Manifest{
		CreatedAt: time.Now(),
		Users:     []manifest.User{},
		Bookings:  []string{},
		Rentals:   []string{},
		Packages:  []string{},
	}

	batches := (len(profiles) + r.opts.BatchSize - 1) / r.opts.BatchSize
	report.Infof(r.out, "creating %d users in %d batches of %d", len(profiles), batches, r.opts.BatchSize)

	start := time.Now()
	for b := 0; b < batches; b++ {
		lo := b * r.opts.BatchSize
		hi := min(lo+r.opts.BatchSize, len(profiles))
		for _, p := range profiles[lo:hi] {
			r.seedUser(ctx, p, cfg, &stats, &man)
		}

		rate := 0.0
		if elapsed := time.Since(start).Seconds(); elapsed > 0 {
			rate = float64(stats.UsersCreated) / elapsed
		}
		report.OKf(r.out, "batch %d/%d | users %d/%d | bookings %d | %.1f users/sec",
			b+1, batches, stats.UsersCreated, len(profiles), stats.BookingsCreated, rate)
	}

	man.Stats = stats.Map()
	if err := manifest.Save(r.fsys, r.opts.Manifest, man); err != nil {
		return stats, fmt.Errorf("save manifest: %w", err)
	}
	report.Infof(r.out, "rollback manifest saved to %s", r.opts.Manifest)

	r.summary(stats, time.Since(start))
	return stats, nil
}

// seedUser runs the per-user chain. Every step after creation is
// best-effort: a failure is counted and the chain continues.
func (r *Runner) seedUser(ctx context.Context, p profile.Profile, cfg RunConfig, st *Stats, man *manifest.Manifest) {
	userID := r.createUser(ctx, p, cfg)
	if userID == "" {
		st.UsersFailed++
		return
	}
	st.UsersCreated++
	man.Users = append(man.Users, manifest.User{ID: userID, Email: p.Email, TestID: p.TestID})

	r.topUp(ctx, userID, st)

	usePackage := r.rand.Float64() < packageChance
	if usePackage && len(cfg.Packages) > 0 {
		r.purchasePackage(ctx, userID, cfg, st, man)
	}

	bookings := 1 + r.rand.Intn(maxBookings)
	for i := 0; i < bookings; i++ {
		r.createBooking(ctx, userID, cfg, usePackage, st, man)
	}

	if r.rand.Float64() < rentalChance {
		r.createRental(ctx, userID, cfg, st, man)
	}
}

// createUser tries public self-registration first, then falls back to the
// admin-privileged creation endpoint with a resolved role id. Returns the
// user id, or empty when both paths fail or the API returns no id.
func (r *Runner) createUser(ctx context.Context, p profile.Profile, cfg RunConfig) string {
	id, err := r.client.Register(ctx, api.RegisterRequest{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Password:  p.Password,
		Age:       p.Age,
		Weight:    p.Weight,
		Currency:  p.Currency,
	})
	if err == nil {
		return id
	}
	slog.Debug("registration failed, trying admin create", "email", p.Email, "err", err)

	id, err = r.client.CreateUser(ctx, api.CreateUserRequest{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Password:  p.Password,
		RoleID:    cfg.roleID(),
	})
	if err != nil {
		slog.Warn("user creation failed", "email", p.Email, "err", err)
		return ""
	}
	return id
}

func (r *Runner) topUp(ctx context.Context, userID string, st *Stats) {
	amount := float64(minTopup + r.rand.Intn(maxTopup-minTopup+1))
	err := r.client.Deposit(ctx, userID, api.DepositRequest{
		Amount:       amount,
		Currency:     "EUR",
		Method:       "cash",
		AutoComplete: true,
		Notes:        "Load test initial balance",
	})
	if err != nil {
		slog.Debug("wallet top-up failed", "user", userID, "err", err)
		return
	}
	st.TopupsCreated++
	st.TotalTopupAmount += amount
}

func (r *Runner) purchasePackage(ctx context.Context, userID string, cfg RunConfig, st *Stats, man *manifest.Manifest) {
	pkg := cfg.Packages[r.rand.Intn(len(cfg.Packages))]
	id, err := r.client.PurchasePackage(ctx, api.PurchaseRequest{
		UserID:        userID,
		PackageID:     pkg.ID,
		PaymentMethod: "wallet",
		Currency:      "EUR",
	})
	if err != nil {
		slog.Debug("package purchase failed", "user", userID, "err", err)
		return
	}
	if id == "" {
		return
	}
	man.Packages = append(man.Packages, id)
	st.PackagesPurchased++
	st.TotalRevenue += pkg.Price
}

func (r *Runner) createBooking(ctx context.Context, userID string, cfg RunConfig, usePackage bool, st *Stats, man *manifest.Manifest) {
	if len(cfg.Instructors) == 0 || len(cfg.Services) == 0 {
		return
	}

	instructor := cfg.Instructors[r.rand.Intn(len(cfg.Instructors))]
	service := cfg.Services[r.rand.Intn(len(cfg.Services))]
	date := time.Now().AddDate(0, 0, 1+r.rand.Intn(bookingWindowDays))
	duration := durations[r.rand.Intn(len(durations))]

	// package-covered bookings carry no charge
	amount := 0.0
	if !usePackage {
		amount = hourlyRate * duration
	}

	req := api.BookingRequest{
		Date:         date.Format("2006-01-02"),
		StartHour:    startHours[r.rand.Intn(len(startHours))],
		Duration:     duration,
		StudentID:    userID,
		InstructorID: instructor.ID,
		ServiceID:    service.ID,
		Status:       "confirmed",
		UsePackage:   usePackage,
		Amount:       amount,
		Notes:        "Load test booking - " + time.Now().Format(time.RFC3339),
	}

	id, err := r.client.CreateBooking(ctx, req)
	if err != nil {
		slog.Debug("booking creation failed", "user", userID, "err", err)
		return
	}
	if id == "" {
		return
	}
	man.Bookings = append(man.Bookings, id)
	st.BookingsCreated++
	if !usePackage {
		st.TotalRevenue += amount
	}
}

func (r *Runner) createRental(ctx context.Context, userID string, cfg RunConfig, st *Stats, man *manifest.Manifest) {
	if len(cfg.RentalEquipment) == 0 {
		return
	}

	equipment := cfg.RentalEquipment[r.rand.Intn(len(cfg.RentalEquipment))]
	start := time.Now().AddDate(0, 0, 1+r.rand.Intn(rentalWindowDays))
	hours := minRentalHours + r.rand.Intn(maxRentalHours-minRentalHours+1)
	price := float64(minRentalPrice + r.rand.Intn(maxRentalPrice-minRentalPrice+1))

	req := api.RentalRequest{
		UserID:        userID,
		EquipmentIDs:  []string{equipment.ID},
		StartDate:     start.Format(time.RFC3339),
		EndDate:       start.Add(time.Duration(hours) * time.Hour).Format(time.RFC3339),
		RentalDate:    start.Format("2006-01-02"),
		Status:        "active",
		PaymentStatus: "paid",
		TotalPrice:    price,
		Notes:         "Load test rental - " + time.Now().Format(time.RFC3339),
	}

	id, err := r.client.CreateRental(ctx, req)
	if err != nil {
		slog.Debug("rental creation failed", "user", userID, "err", err)
		return
	}
	if id == "" {
		return
	}
	man.Rentals = append(man.Rentals, id)
	st.RentalsCreated++
	st.TotalRevenue += price
}

func (r *Runner) summary(st Stats, elapsed time.Duration) {
	rate := 0.0
	if s := elapsed.Seconds(); s > 0 {
		rate = float64(st.UsersCreated) / s
	}

	report.Summary(r.out, "population complete", []report.Row{
		{Label: "Users created", Value: fmt.Sprintf("%d", st.UsersCreated)},
		{Label: "Users failed", Value: fmt.Sprintf("%d", st.UsersFailed)},
		{Label: "Wallet top-ups", Value: fmt.Sprintf("%d (€%.2f)", st.TopupsCreated, st.TotalTopupAmount)},
		{Label: "Packages purchased", Value: fmt.Sprintf("%d", st.PackagesPurchased)},
		{Label: "Bookings created", Value: fmt.Sprintf("%d", st.BookingsCreated)},
		{Label: "Rentals created", Value: fmt.Sprintf("%d", st.RentalsCreated)},
		{Label: "Total revenue", Value: fmt.Sprintf("€%.2f", st.TotalRevenue)},
		{Label: "Elapsed", Value: elapsed.Round(100 * time.Millisecond).String()},
		{Label: "Throughput", Value: fmt.Sprintf("%.1f users/sec", rate)},
	})
}
