package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
)

type Permission string

const (
	PermissionRead  Permission = "USER_READ"
	PermissionWrite Permission = "USER_WRITE"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the identity a request runs as.
type Principal struct {
	Subject     string
	Permissions []Permission
}

func (p Principal) Has(perm Permission) bool {
	return slices.Contains(p.Permissions, perm)
}

func (p Principal) CanRead() bool {
	return p.Has(PermissionRead)
}

func (p Principal) CanWrite() bool {
	return p.Has(PermissionWrite)
}

// Authenticator resolves the principal behind a request.
type Authenticator interface {
	Authenticate(r *http.Request) (Principal, error)
}

// StaticAuthenticator authenticates every request as the same principal.
type StaticAuthenticator struct {
	Principal Principal
}

func NewStatic(subject string, perms []Permission) StaticAuthenticator {
	return StaticAuthenticator{Principal: Principal{Subject: subject, Permissions: perms}}
}

func (a StaticAuthenticator) Authenticate(*http.Request) (Principal, error) {
	return a.Principal, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ParsePermissions converts configured names, dropping blanks.
func ParsePermissions(names []string) []Permission {
	perms := make([]Permission, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		perms = append(perms, Permission(n))
	}

	return perms
}
