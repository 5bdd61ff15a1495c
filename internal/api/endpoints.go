package api

import (
	"context"
	"net/http"
)

// Identity is the authenticated principal returned by /auth/me.
type Identity struct {
	Email string
	Role  string
}

// Role is a platform role entry.
type Role struct {
	ID   string
	Name string
}

// Instructor is a user who can be assigned to bookings.
type Instructor struct {
	ID   string
	Name string
}

// Service is a bookable lesson service or a rental-equipment entry.
type Service struct {
	ID          string
	Name        string
	ServiceType string
	Category    string
}

// Rental reports whether the service is rental equipment rather than a
// bookable lesson.
func (s Service) Rental() bool {
	return s.ServiceType == "rental" || s.Category == "rental"
}

// Package is a purchasable lesson package.
type Package struct {
	ID    string
	Name  string
	Price float64
}

// User is a platform user as returned by the user listing.
type User struct {
	ID    string
	Email string
}

// privilegedRoles are the roles expected to carry full admin scope.
var privilegedRoles = map[string]bool{
	"admin":   true,
	"manager": true,
	"owner":   true,
}

// Privileged reports whether the role is in the expected admin set.
func Privileged(role string) bool {
	return privilegedRoles[role]
}

// Verify confirms the token against /auth/me and reports who it belongs to.
// Both workflows treat a failure here as fatal.
func (c *Client) Verify(ctx context.Context) (Identity, error) {
	p, err := c.Request(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{Email: p.Field("email"), Role: p.Field("role")}
	if id.Email == "" {
		id.Email = "unknown"
	}
	if id.Role == "" {
		id.Role = "unknown"
	}
	return id, nil
}

// ListRoles returns the platform's role catalogue.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	list, err := c.RequestList(ctx, http.MethodGet, "/roles")
	if err != nil {
		return nil, err
	}

	roles := make([]Role, len(list))
	for i, p := range list {
		roles[i] = Role{ID: p.Field("id"), Name: p.Field("name")}
	}
	return roles, nil
}

// ListInstructors returns users holding the instructor role.
func (c *Client) ListInstructors(ctx context.Context) ([]Instructor, error) {
	list, err := c.RequestList(ctx, http.MethodGet, "/users?role=instructor")
	if err != nil {
		return nil, err
	}

	instructors := make([]Instructor, len(list))
	for i, p := range list {
		instructors[i] = Instructor{ID: p.Field("id"), Name: p.Field("name")}
		if instructors[i].Name == "" {
			instructors[i].Name = "Instructor"
		}
	}
	return instructors, nil
}

// ListServices returns every service, lessons and rental equipment alike.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	list, err := c.RequestList(ctx, http.MethodGet, "/services")
	if err != nil {
		return nil, err
	}

	services := make([]Service, len(list))
	for i, p := range list {
		services[i] = Service{
			ID:          p.Field("id"),
			Name:        p.Field("name"),
			ServiceType: p.Field("serviceType"),
			Category:    p.Field("category"),
		}
	}
	return services, nil
}

// ListPackages returns the purchasable lesson packages.
func (c *Client) ListPackages(ctx context.Context) ([]Package, error) {
	list, err := c.RequestList(ctx, http.MethodGet, "/services/packages")
	if err != nil {
		return nil, err
	}

	packages := make([]Package, len(list))
	for i, p := range list {
		packages[i] = Package{
			ID:    p.Field("id"),
			Name:  p.Field("name"),
			Price: p.Number("price"),
		}
	}
	return packages, nil
}

// ListUsers returns the full user list. Used by the rollback pattern
// fallback only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	list, err := c.RequestList(ctx, http.MethodGet, "/users")
	if err != nil {
		return nil, err
	}

	users := make([]User, len(list))
	for i, p := range list {
		users[i] = User{ID: p.Field("id"), Email: p.Field("email")}
	}
	return users, nil
}

// RegisterRequest is the public self-registration payload.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
	Age       int    `json:"age,omitempty"`
	Weight    int    `json:"weight,omitempty"`
	Currency  string `json:"preferred_currency,omitempty"`
}

// Register creates a user via public self-registration and returns the new
// user id. A success response without an id yields an empty id and no error.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	p, err := c.Request(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		return "", err
	}
	return p.Field("id"), nil
}

// CreateUserRequest is the admin-privileged user-creation payload.
type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
	RoleID    string `json:"role_id"`
}

// CreateUser creates a user via the admin endpoint and returns the new id.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (string, error) {
	p, err := c.Request(ctx, http.MethodPost, "/users", req)
	if err != nil {
		return "", err
	}
	return p.Field("id"), nil
}

// DepositRequest is the admin wallet deposit payload.
type DepositRequest struct {
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Method       string  `json:"method"`
	AutoComplete bool    `json:"autoComplete"`
	Notes        string  `json:"notes,omitempty"`
}

// Deposit funds a user's wallet via the admin deposit endpoint.
func (c *Client) Deposit(ctx context.Context, userID string, req DepositRequest) error {
	_, err := c.Request(ctx, http.MethodPost, "/wallet/admin/deposit/"+userID, req)
	return err
}

// PurchaseRequest is the package purchase payload.
type PurchaseRequest struct {
	UserID        string `json:"user_id"`
	PackageID     string `json:"package_id"`
	PaymentMethod string `json:"payment_method"`
	Currency      string `json:"currency"`
}

// PurchasePackage buys a package for a user and returns the customer-package
// id, whichever field the API chooses to carry it in.
func (c *Client) PurchasePackage(ctx context.Context, req PurchaseRequest) (string, error) {
	p, err := c.Request(ctx, http.MethodPost, "/services/packages/purchase", req)
	if err != nil {
		return "", err
	}
	if id := p.Field("id"); id != "" {
		return id, nil
	}
	return p.Field("customerPackageId"), nil
}

// BookingRequest is the lesson booking payload.
type BookingRequest struct {
	Date         string  `json:"date"`
	StartHour    int     `json:"start_hour"`
	Duration     float64 `json:"duration"`
	StudentID    string  `json:"student_user_id"`
	InstructorID string  `json:"instructor_user_id"`
	ServiceID    string  `json:"service_id"`
	Status       string  `json:"status"`
	UsePackage   bool    `json:"use_package"`
	Amount       float64 `json:"amount"`
	Notes        string  `json:"notes,omitempty"`
}

// CreateBooking creates a lesson booking and returns its id.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (string, error) {
	p, err := c.Request(ctx, http.MethodPost, "/bookings", req)
	if err != nil {
		return "", err
	}
	return p.Field("id"), nil
}

// RentalRequest is the equipment rental payload.
type RentalRequest struct {
	UserID        string   `json:"user_id"`
	EquipmentIDs  []string `json:"equipment_ids"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	RentalDate    string   `json:"rental_date"`
	Status        string   `json:"status"`
	PaymentStatus string   `json:"payment_status"`
	TotalPrice    float64  `json:"total_price"`
	Notes         string   `json:"notes,omitempty"`
}

// CreateRental creates an equipment rental and returns its id.
func (c *Client) CreateRental(ctx context.Context, req RentalRequest) (string, error) {
	p, err := c.Request(ctx, http.MethodPost, "/rentals", req)
	if err != nil {
		return "", err
	}
	return p.Field("id"), nil
}

// DeleteBooking removes a booking by id.
func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodDelete, "/bookings/"+id, nil)
	return err
}

// DeleteRental removes a rental by id.
func (c *Client) DeleteRental(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodDelete, "/rentals/"+id, nil)
	return err
}

// DeleteCustomerPackage removes a purchased package by id.
func (c *Client) DeleteCustomerPackage(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodDelete, "/services/customer-packages/"+id, nil)
	return err
}

// DeleteUser removes a user by id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodDelete, "/users/"+id, nil)
	return err
}
