package config

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"slices"
	"strings"
)

const pemMarker = "-----BEGIN "

// ResolvePEM returns PEM bytes for value. Values containing a PEM header are
// used inline, with literal "\n" sequences from .env files expanded; anything
// else is read as a file path.
func ResolvePEM(value string) ([]byte, error) {
	if strings.Contains(value, pemMarker) {
		return []byte(strings.ReplaceAll(value, `\n`, "\n")), nil
	}
	b, err := os.ReadFile(value)
	if err != nil {
		return nil, fmt.Errorf("failed to read PEM file %q: %w", value, err)
	}
	return b, nil
}

// ServerTLS builds the server TLS configuration. Certificates from TLS_CA are
// served after the leaf as chain material. It returns nil when TLS is not
// configured.
func (c *Config) ServerTLS() (*tls.Config, error) {
	if !c.TLSEnabled() {
		return nil, nil
	}

	certPEM, err := ResolvePEM(c.TLS.Cert)
	if err != nil {
		return nil, fmt.Errorf("TLS_CERT: %w", err)
	}
	keyPEM, err := ResolvePEM(c.TLS.Key)
	if err != nil {
		return nil, fmt.Errorf("TLS_KEY: %w", err)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load key pair: %w", err)
	}

	if c.TLS.CA != "" {
		caPEM, err := ResolvePEM(c.TLS.CA)
		if err != nil {
			return nil, fmt.Errorf("TLS_CA: %w", err)
		}
		chain, err := certificateChain(caPEM)
		if err != nil {
			return nil, fmt.Errorf("TLS_CA: %w", err)
		}
		cert.Certificate = appendMissing(cert.Certificate, chain)
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

// certificateChain returns the DER bytes of every certificate in pemBytes
func certificateChain(pemBytes []byte) ([][]byte, error) {
	var chain [][]byte
	for {
		var block *pem.Block
		block, pemBytes = pem.Decode(pemBytes)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		if _, err := x509.ParseCertificate(block.Bytes); err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		chain = append(chain, block.Bytes)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no certificates found")
	}
	return chain, nil
}

// appendMissing appends the certificates of extra not already in chain
func appendMissing(chain, extra [][]byte) [][]byte {
	for _, der := range extra {
		if !slices.ContainsFunc(chain, func(have []byte) bool { return bytes.Equal(have, der) }) {
			chain = append(chain, der)
		}
	}
	return chain
}
