package scheduler

import "fmt"

// Authentication mechanisms understood by the Redis transport.
const (
	MechanismUnauthenticated = "UNAUTHENTICATED"
	MechanismPassword        = "PASSWORD"
)

// SessionKey is the credential presented to a scheduler when a client connects.
type SessionKey struct {
	Mechanism string
	Data      string
}

// AuthModule produces the payload for one authentication mechanism.
type AuthModule interface {
	Mechanism() string
	Payload() (string, error)
}

// NewSessionKey asks the module for its payload and wraps it in a SessionKey.
// A nil module yields an unauthenticated key.
func NewSessionKey(m AuthModule) (SessionKey, error) {
	if m == nil {
		m = InsecureAuth{}
	}
	payload, err := m.Payload()
	if err != nil {
		return SessionKey{}, fmt.Errorf("failed to build %s session key: %w", m.Mechanism(), err)
	}
	return SessionKey{Mechanism: m.Mechanism(), Data: payload}, nil
}

// InsecureAuth presents no credentials.
type InsecureAuth struct{}

func (InsecureAuth) Mechanism() string { return MechanismUnauthenticated }

func (InsecureAuth) Payload() (string, error) { return MechanismUnauthenticated, nil }

// PasswordAuth presents a shared password, resolved lazily so a missing secret
// only fails the cluster that needs it.
type PasswordAuth struct {
	Lookup func() (string, error)
}

func (PasswordAuth) Mechanism() string { return MechanismPassword }

func (a PasswordAuth) Payload() (string, error) {
	if a.Lookup == nil {
		return "", fmt.Errorf("no password source configured")
	}
	pw, err := a.Lookup()
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", fmt.Errorf("password is empty")
	}
	return pw, nil
}
