package storage

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNotFound     = errors.New("storage: not found")
	ErrConflict     = errors.New("storage: already exists")
	ErrSchemaTooNew = errors.New("storage: schema version newer than code")

	// ErrStorage tags engine-level failures (I/O, corruption, uncategorized
	// constraint errors). Callers surface it generically; the wrapped message
	// keeps the detail for server-side logs.
	ErrStorage = errors.New("storage: engine failure")

	ErrInvalidAccount      = errors.New("storage: invalid account")
	ErrInvalidAttendance   = errors.New("storage: invalid attendance record")
	ErrInvalidDisciplinary = errors.New("storage: invalid disciplinary record")
	ErrInvalidEmployment   = errors.New("storage: invalid employment record")
	ErrInvalidLogin        = errors.New("storage: invalid login")
	ErrInvalidFormat       = errors.New("storage: invalid format")
)

// Permission is an ordered capability level for one resource category.
type Permission int

const (
	PermissionNone Permission = iota
	PermissionReadOnly
	PermissionWrite
)

func (p Permission) Valid() bool {
	return p >= PermissionNone && p <= PermissionWrite
}

// Allows reports whether p satisfies the given minimum level.
func (p Permission) Allows(min Permission) bool {
	return p.Valid() && p >= min
}

func (p Permission) String() string {
	switch p {
	case PermissionNone:
		return "none"
	case PermissionReadOnly:
		return "read-only"
	case PermissionWrite:
		return "write"
	default:
		return "invalid"
	}
}

// Account is the parent entity representing a person, keyed by identifier.
type Account struct {
	ID         string
	Forename   string
	Surname    string
	Role       string
	Flagged    bool
	Annotation string
}

func (a *Account) Validate() error {
	if a == nil ||
		strings.TrimSpace(a.ID) == "" ||
		!startsWithLetter(a.ID) ||
		strings.TrimSpace(a.Forename) == "" ||
		strings.TrimSpace(a.Surname) == "" ||
		strings.TrimSpace(a.Role) == "" {
		return ErrInvalidAccount
	}
	return nil
}

// Attendance records one account on one date, keyed by both.
type Attendance struct {
	Account string
	Date    time.Time
	Note    string
}

func (a *Attendance) Validate() error {
	if a == nil || strings.TrimSpace(a.Account) == "" || !startsWithLetter(a.Account) || a.Date.IsZero() {
		return ErrInvalidAttendance
	}
	return nil
}

// Disciplinary is one disciplinary case against an account, keyed by
// account and kind.
type Disciplinary struct {
	Account    string
	Kind       string
	Accuser    string
	Consultant string
	Lawyers    string
	Facts      string
	Occurrence string
	Note       string
	Verdict    string
}

func (d *Disciplinary) Validate() error {
	if d == nil ||
		strings.TrimSpace(d.Account) == "" ||
		!startsWithLetter(d.Account) ||
		strings.TrimSpace(d.Kind) == "" {
		return ErrInvalidDisciplinary
	}
	return nil
}

// Employment records one dismissal of an account, keyed by account, the
// company it left and the date of dismissal.
type Employment struct {
	Account       string
	OldCompany    string
	DateOfDismiss time.Time
	Currently     bool
	NewCompany    string
	TotalTime     string
}

func (e *Employment) Validate() error {
	if e == nil ||
		strings.TrimSpace(e.Account) == "" ||
		!startsWithLetter(e.Account) ||
		strings.TrimSpace(e.OldCompany) == "" ||
		!startsWithLetterOrDigit(e.OldCompany) ||
		e.DateOfDismiss.IsZero() {
		return ErrInvalidEmployment
	}
	return nil
}

// Credential is stored authentication material plus one permission level
// per protected resource category. Its lifecycle is independent of Account.
type Credential struct {
	User               string
	Hash               string
	Salt               string
	AccessAccount      Permission
	AccessAttendance   Permission
	AccessDisciplinary Permission
}

// Permissions is the capability subset of a credential, without the
// authentication material.
type Permissions struct {
	AccessAccount      Permission
	AccessAttendance   Permission
	AccessDisciplinary Permission
}

// NewCredential carries a plaintext password; it is salted and hashed
// before anything is persisted.
type NewCredential struct {
	User               string
	Password           string
	AccessAccount      Permission
	AccessAttendance   Permission
	AccessDisciplinary Permission
}

func (c *NewCredential) Validate() error {
	if c == nil ||
		strings.TrimSpace(c.User) == "" ||
		!startsWithLetter(c.User) ||
		strings.Contains(c.User, ":") ||
		strings.TrimSpace(c.Password) == "" ||
		!c.AccessAccount.Valid() ||
		!c.AccessAttendance.Valid() ||
		!c.AccessDisciplinary.Valid() {
		return ErrInvalidLogin
	}
	return nil
}

// AccountSearch filters the account search. Role is a SQL wildcard
// pattern; empty matches every role.
type AccountSearch struct {
	Name string
	Role string
}

// AttendanceSearch filters the attendance search. Date is a SQL wildcard
// pattern over the YYYY-MM-DD text form.
type AttendanceSearch struct {
	Name string
	Date string
}

// DisciplinarySearch filters the disciplinary search. Kind is a SQL
// wildcard pattern.
type DisciplinarySearch struct {
	Name string
	Kind string
}

// EmploymentSearch filters the employment search. OldCompany and Date are
// SQL wildcard patterns.
type EmploymentSearch struct {
	Name       string
	OldCompany string
	Date       string
}

type AccountRepository interface {
	Fetch(ctx context.Context, id string) (*Account, error)
	Search(ctx context.Context, criteria AccountSearch, limit int) ([]Account, error)
	Roles(ctx context.Context, name string) ([]string, error)
	Add(ctx context.Context, account *Account) error
	Update(ctx context.Context, previousID string, account *Account) error
	Delete(ctx context.Context, id string) error
}

type AttendanceRepository interface {
	Fetch(ctx context.Context, account string, date time.Time) (*Attendance, error)
	Search(ctx context.Context, criteria AttendanceSearch, limit int) ([]Attendance, error)
	Dates(ctx context.Context) ([]string, error)
	Add(ctx context.Context, attendance *Attendance) error
	Update(ctx context.Context, previousAccount string, previousDate time.Time, attendance *Attendance) error
	Delete(ctx context.Context, account string, date time.Time) error
}

type DisciplinaryRepository interface {
	Fetch(ctx context.Context, account, kind string) (*Disciplinary, error)
	Search(ctx context.Context, criteria DisciplinarySearch, limit int) ([]Disciplinary, error)
	Accounts(ctx context.Context) ([]string, error)
	Add(ctx context.Context, record *Disciplinary) error
	Update(ctx context.Context, previousAccount, previousKind string, record *Disciplinary) error
	Delete(ctx context.Context, account, kind string) error
}

type EmploymentRepository interface {
	Fetch(ctx context.Context, account, oldCompany string, date time.Time) (*Employment, error)
	Search(ctx context.Context, criteria EmploymentSearch, limit int) ([]Employment, error)
	Dates(ctx context.Context) ([]string, error)
	Add(ctx context.Context, record *Employment) error
	Update(ctx context.Context, previousAccount, previousCompany string, previousDate time.Time, record *Employment) error
	Delete(ctx context.Context, account, oldCompany string, date time.Time) error
}

type CredentialRepository interface {
	Fetch(ctx context.Context, user string) (*Credential, error)
	Permissions(ctx context.Context, user string) (*Permissions, error)
	Users(ctx context.Context) ([]string, error)
	Add(ctx context.Context, login NewCredential) error
	SetPassword(ctx context.Context, user, password string) error
	Delete(ctx context.Context, user string) error
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

func startsWithLetterOrDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
