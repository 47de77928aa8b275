package auth

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"smart-shopper/internal/models"
	"smart-shopper/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// Capability names a guarded operation.
type Capability string

const (
	ManageProducts Capability = "products.manage"
	DeleteProducts Capability = "products.delete"
	ViewAnalytics  Capability = "analytics.view"
	VerifyExit     Capability = "orders.verify_exit"
	ViewStats      Capability = "stats.view"
	ViewOrders     Capability = "orders.view"
	ViewUsers      Capability = "users.view"
	ManageStaff    Capability = "staff.manage"
	ManageSettings Capability = "settings.manage"
	UseAssistant   Capability = "assistant.use"
)

// Capabilities is the static role table.
var Capabilities = map[Capability][]models.Role{
	ManageProducts: {models.RoleSuperAdmin, models.RoleInventoryManager},
	DeleteProducts: {models.RoleSuperAdmin},
	ViewAnalytics:  {models.RoleSuperAdmin, models.RoleBillingStaff},
	VerifyExit:     {models.RoleSuperAdmin, models.RoleBillingStaff},
	ViewStats:      {models.RoleSuperAdmin},
	ViewOrders:     {models.RoleSuperAdmin},
	ViewUsers:      {models.RoleSuperAdmin},
	ManageStaff:    {models.RoleSuperAdmin},
	ManageSettings: {models.RoleSuperAdmin},
	UseAssistant:   {models.RoleSuperAdmin},
}

// ErrNoIdentity means the request carried no usable caller identity.
var ErrNoIdentity = errors.New("no caller identity")

// Verifier resolves the caller's asserted username from a request.
type Verifier interface {
	Identify(r *http.Request) (string, error)
}

// AdminHeader is the development identity header.
const AdminHeader = "X-Admin-Username"

// HeaderVerifier trusts whatever username the caller puts in the header. Anyone who knows a
// privileged username can act as that user; use TokenVerifier outside of development.
type HeaderVerifier struct {
	Header string
}

func (v HeaderVerifier) Identify(r *http.Request) (string, error) {
	name := v.Header
	if name == "" {
		name = AdminHeader
	}
	username := r.Header.Get(name)
	if username == "" {
		return "", ErrNoIdentity
	}
	return username, nil
}

// TokenVerifier accepts "Authorization: Bearer <jwt>" issued by Guard.Login.
type TokenVerifier struct {
	Tokens *Tokens
}

func (v TokenVerifier) Identify(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoIdentity
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", fmt.Errorf("%w: authorization header must start with Bearer", ErrNoIdentity)
	}
	claims, err := v.Tokens.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// Guard maps identities to staff members and checks them against allowed roles.
type Guard struct {
	Store    *store.Store
	Verifier Verifier
	Tokens   *Tokens // nil disables staff login
}

func NewGuard(s *store.Store, v Verifier, tokens *Tokens) *Guard {
	return &Guard{Store: s, Verifier: v, Tokens: tokens}
}

// Authorize looks the identity up by exact username and checks its role.
func (g *Guard) Authorize(identity string, allowed ...models.Role) (models.StaffMember, error) {
	var member models.StaffMember
	var found bool
	_ = g.Store.View(func(st *models.Snapshot) error {
		member, found = store.FindStaff(st, identity)
		return nil
	})
	if !found || !slices.Contains(allowed, member.Role) {
		return models.StaffMember{}, models.ErrUnauthorized
	}
	member.PasswordHash = ""
	return member, nil
}

// Check resolves the request's identity and authorizes it for a capability.
func (g *Guard) Check(r *http.Request, c Capability) (models.StaffMember, error) {
	identity, err := g.Verifier.Identify(r)
	if err != nil {
		return models.StaffMember{}, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	return g.Authorize(identity, Capabilities[c]...)
}

// Login checks a staff password and issues a token.
func (g *Guard) Login(username, password string) (string, models.StaffMember, error) {
	if g.Tokens == nil {
		return "", models.StaffMember{}, fmt.Errorf("%w: token login disabled", models.ErrUnauthorized)
	}
	var member models.StaffMember
	var found bool
	_ = g.Store.View(func(st *models.Snapshot) error {
		member, found = store.FindStaff(st, username)
		return nil
	})
	if !found || member.PasswordHash == "" {
		return "", models.StaffMember{}, models.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return "", models.StaffMember{}, models.ErrUnauthorized
	}
	token, err := g.Tokens.GenerateToken(member.Username, member.Role)
	if err != nil {
		return "", models.StaffMember{}, err
	}
	member.PasswordHash = ""
	return token, member, nil
}

// HashPassword is shared by staff creation and the super admin bootstrap.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// SetPassword stores a bcrypt hash for an existing staff member.
func SetPassword(s *store.Store, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.Mutate(func(tx *store.Tx) error {
		m := tx.Staff(username)
		if m == nil {
			return models.ErrStaffNotFound
		}
		m.PasswordHash = hash
		return nil
	})
}
