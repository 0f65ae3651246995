// Package auth is the request guard: it authenticates Basic credentials
// against the credential store and checks per-resource permission levels
// before an operation is allowed to proceed.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nwrenger/schiller-db/internal/crypto"
	"github.com/nwrenger/schiller-db/internal/storage"
)

// ErrUnauthorized covers every failed check: missing or malformed header,
// unknown user, wrong password and insufficient permission. Callers can
// not tell them apart, which keeps user enumeration off the table.
var ErrUnauthorized = errors.New("auth: unauthorized")

const basicPrefix = "Basic "

// Resource is one protected resource category.
type Resource int

const (
	// ResourceAccount protects account records.
	ResourceAccount Resource = iota
	// ResourceAttendance protects attendance and employment records.
	ResourceAttendance
	// ResourceDisciplinary protects disciplinary records.
	ResourceDisciplinary
)

func (r Resource) String() string {
	switch r {
	case ResourceAccount:
		return "account"
	case ResourceAttendance:
		return "attendance"
	case ResourceDisciplinary:
		return "disciplinary"
	default:
		return "unknown"
	}
}

// Required pairs a resource category with the minimum permission an
// operation needs on it.
type Required struct {
	Resource Resource
	Min      storage.Permission
}

// ReadOnly is the requirement of a read-only operation on r.
func ReadOnly(r Resource) Required {
	return Required{Resource: r, Min: storage.PermissionReadOnly}
}

// Write is the requirement of a mutating operation on r.
func Write(r Resource) Required {
	return Required{Resource: r, Min: storage.PermissionWrite}
}

// ParseBasicAuth decodes a Basic authorization header into its user and
// password. Any malformation is ErrUnauthorized.
func ParseBasicAuth(header string) (user, password string, err error) {
	encoded, ok := strings.CutPrefix(header, basicPrefix)
	if !ok {
		return "", "", ErrUnauthorized
	}
	decoded, decodeErr := base64.StdEncoding.DecodeString(encoded)
	if decodeErr != nil || !utf8.Valid(decoded) {
		return "", "", ErrUnauthorized
	}
	user, password, ok = strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", ErrUnauthorized
	}
	return user, password, nil
}

// Guard authorizes requests against stored credentials.
type Guard struct {
	credentials storage.CredentialRepository
	logger      *slog.Logger
}

func NewGuard(credentials storage.CredentialRepository, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{credentials: credentials, logger: logger}
}

// Authorize verifies the authorization header and checks the credential's
// permission for the required resource category. On success it returns
// the authenticated user for the caller's audit trail.
func (g *Guard) Authorize(ctx context.Context, header string, required Required) (string, error) {
	user, password, err := ParseBasicAuth(header)
	if err != nil {
		g.logger.WarnContext(ctx, "missing or malformed authorization header")
		return "", ErrUnauthorized
	}

	credential, err := g.credentials.Fetch(ctx, user)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			g.logger.ErrorContext(ctx, "credential lookup failed", "user", user, "err", err)
		} else {
			g.logger.WarnContext(ctx, "unknown credential user", "user", user)
		}
		return "", ErrUnauthorized
	}

	if !crypto.Verify(password, credential.Hash, credential.Salt) {
		g.logger.WarnContext(ctx, "password verification failed", "user", user)
		return "", ErrUnauthorized
	}

	if !permissionFor(credential, required.Resource).Allows(required.Min) {
		g.logger.WarnContext(ctx, "insufficient permission",
			"user", user,
			"resource", required.Resource.String(),
			"required", required.Min.String())
		return "", ErrUnauthorized
	}

	return user, nil
}

func permissionFor(credential *storage.Credential, resource Resource) storage.Permission {
	switch resource {
	case ResourceAccount:
		return credential.AccessAccount
	case ResourceAttendance:
		return credential.AccessAttendance
	case ResourceDisciplinary:
		return credential.AccessDisciplinary
	default:
		return storage.PermissionNone
	}
}
