package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

var (
	// ErrNoCertsFound is returned when no certificates are found in a PEM file.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM file")

	// ErrIncompleteKeyPair is returned when only one of cert_file and
	// key_file is set.
	ErrIncompleteKeyPair = errors.New("tlsroots: cert_file and key_file must be set together")
)

// Config describes a TLS client connection.
type Config struct {
	Enabled bool `koanf:"enabled" yaml:"enabled" json:"enabled"`

	// CAFile adds PEM roots to the system pool.
	CAFile string `koanf:"ca_file" yaml:"ca_file" json:"ca_file"`

	// CertFile and KeyFile hold the client key pair. The pair is reloaded
	// when either file changes.
	CertFile string `koanf:"cert_file" yaml:"cert_file" json:"cert_file"`
	KeyFile  string `koanf:"key_file" yaml:"key_file" json:"key_file"`

	ServerName         string `koanf:"server_name" yaml:"server_name" json:"server_name"`
	InsecureSkipVerify bool   `koanf:"insecure_skip_verify" yaml:"insecure_skip_verify" json:"insecure_skip_verify"`
}

// Validate checks the file settings without reading them.
func (c Config) Validate() error {
	if (c.CertFile == "") != (c.KeyFile == "") {
		return ErrIncompleteKeyPair
	}
	return nil
}

// ClientConfig builds a client tls.Config from cfg. When cfg names a client
// key pair, the returned KeyPair serves it and must be closed by the caller;
// otherwise the KeyPair is nil.
func ClientConfig(cfg Config, logger *slog.Logger) (*tls.Config, *KeyPair, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	tlsCfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CAFile != "" {
		pool := NewPool()
		if err := pool.AddCertFile(cfg.CAFile); err != nil {
			return nil, nil, err
		}
		tlsCfg.RootCAs = pool.Pool()
	}

	if cfg.CertFile == "" {
		return tlsCfg, nil, nil
	}

	kp, err := NewKeyPair(cfg.CertFile, cfg.KeyFile, WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	if err := kp.Watch(); err != nil {
		logger.Warn("client certificate will not be reloaded", "error", err)
	}
	tlsCfg.GetClientCertificate = kp.GetClientCertificate
	return tlsCfg, kp, nil
}

// Pool manages a pool of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool creates a certificate pool seeded with the system roots. Systems
// without a readable root store get an empty pool.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a new empty certificate pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertFile adds certificates from a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}
	return nil
}

// AddCertPEM adds every CERTIFICATE block of pemData. Other block types are
// skipped.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var added int
	for {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		p.certPool.AddCert(cert)
		added++
	}

	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}
