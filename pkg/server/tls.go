package server

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"a11y-hq/lumen/pkg/config"
)

// buildTLSConfig loads the certificate pair. It returns nil when TLS is
// disabled.
func buildTLSConfig(cfg *config.TLSConfig) (*tls.Config, *x509.Certificate, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, nil, errors.New("cert_file and key_file are required when TLS is enabled")
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	if time.Now().After(leaf.NotAfter) {
		return nil, nil, fmt.Errorf("certificate expired at %s", leaf.NotAfter.Format(time.RFC3339))
	}

	version, err := tlsVersion(cfg.MinVersion)
	if err != nil {
		return nil, nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   version,
	}, leaf, nil
}

// tlsVersion maps "1.2" and "1.3" to the crypto/tls constants. Older
// versions are rejected.
func tlsVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", v)
	}
}
