package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"strings"

	"a11y-hq/lumen/pkg/config"
)

var (
	errMissingKey = errors.New("missing API key")
	errInvalidKey = errors.New("invalid API key")
)

type apiKey struct {
	name  string
	value []byte
}

// keyring validates API keys from the server configuration.
type keyring struct {
	header string
	keys   []apiKey
}

// newKeyring resolves the configured keys. Keys written as "${VAR}" are read
// from the environment; unset variables and disabled keys are skipped.
func newKeyring(cfg *config.AuthConfig) *keyring {
	kr := &keyring{header: cfg.Header}
	if kr.header == "" {
		kr.header = config.DefaultServerAuthHeader
	}
	for _, k := range cfg.Keys {
		if k.Disabled {
			continue
		}
		value := k.Key
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			value = os.Getenv(value[2 : len(value)-1])
		}
		if value == "" {
			continue
		}
		kr.keys = append(kr.keys, apiKey{name: k.Name, value: []byte(value)})
	}
	return kr
}

// extract reads the key from the configured header, stripping a Bearer
// scheme from Authorization values.
func (kr *keyring) extract(r *http.Request) string {
	value := r.Header.Get(kr.header)
	if strings.EqualFold(kr.header, "Authorization") {
		if scheme, token, ok := strings.Cut(value, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return value
}

// validate returns the name of the matching key.
func (kr *keyring) validate(key string) (string, error) {
	if key == "" {
		return "", errMissingKey
	}
	for _, k := range kr.keys {
		if subtle.ConstantTimeCompare(k.value, []byte(key)) == 1 {
			return k.name, nil
		}
	}
	return "", errInvalidKey
}

type clientKey struct{}

// ClientFromContext returns the name of the API key that authenticated the
// request.
func ClientFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(clientKey{}).(string)
	return name, ok
}

func (s *Server) authMiddleware(kr *keyring) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, err := kr.validate(kr.extract(r))
			if err != nil {
				s.logger.WarnContext(r.Context(), "API key rejected",
					"error", err,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="lumen"`)
				respondError(w, http.StatusUnauthorized, err.Error(), nil)
				return
			}
			s.logger.DebugContext(r.Context(), "API key authenticated", "client", name, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, name)))
		})
	}
}
