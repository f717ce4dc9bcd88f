package git

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"a11y-hq/lumen/pkg/config"
)

// Auth types.
const (
	AuthToken = "token"
	AuthSSH   = "ssh"
	AuthNone  = "none"
)

// AuthProvider supplies Git transport credentials.
type AuthProvider interface {
	// Method returns the transport authentication method. A nil method
	// means anonymous access.
	Method() (transport.AuthMethod, error)

	// Type names the provider for logs.
	Type() string
}

// TokenAuth authenticates HTTPS remotes with a personal access token.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a token provider.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

// Method returns basic auth carrying the token as password.
func (a *TokenAuth) Method() (transport.AuthMethod, error) {
	if a.token == "" {
		return nil, errors.New("token cannot be empty")
	}
	return &http.BasicAuth{Username: "git", Password: a.token}, nil
}

// Type returns AuthToken.
func (a *TokenAuth) Type() string { return AuthToken }

// SSHAuth authenticates with a private key file.
type SSHAuth struct {
	keyPath    string
	passphrase string
}

// NewSSHAuth creates an SSH key provider. passphrase may be empty.
func NewSSHAuth(keyPath, passphrase string) *SSHAuth {
	return &SSHAuth{keyPath: keyPath, passphrase: passphrase}
}

// Method loads the key. Keys readable by group or others are rejected.
func (a *SSHAuth) Method() (transport.AuthMethod, error) {
	if a.keyPath == "" {
		return nil, errors.New("ssh key path cannot be empty")
	}

	info, err := os.Stat(a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access SSH key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return nil, fmt.Errorf("SSH key file permissions too open (%o), should be 0600", mode)
	}

	auth, err := ssh.NewPublicKeysFromFile("git", a.keyPath, a.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}
	return auth, nil
}

// Type returns AuthSSH.
func (a *SSHAuth) Type() string { return AuthSSH }

// NoAuth is used for public repositories.
type NoAuth struct{}

// Method returns nil.
func (NoAuth) Method() (transport.AuthMethod, error) { return nil, nil }

// Type returns AuthNone.
func (NoAuth) Type() string { return AuthNone }

// NewAuthProvider creates the provider named by cfg.Type.
func NewAuthProvider(cfg *config.GitAuthConfig) (AuthProvider, error) {
	if cfg == nil {
		return nil, errors.New("auth config cannot be nil")
	}

	switch cfg.Type {
	case AuthToken:
		if cfg.Token == "" {
			return nil, errors.New("token auth requires a token")
		}
		return NewTokenAuth(cfg.Token), nil
	case AuthSSH:
		if cfg.SSHKeyPath == "" {
			return nil, errors.New("ssh auth requires ssh_key_path")
		}
		return NewSSHAuth(cfg.SSHKeyPath, cfg.SSHKeyPassphrase), nil
	case AuthNone, "":
		return NoAuth{}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}
