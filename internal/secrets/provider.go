// Package secrets resolves runtime secrets from either environment
// variables or Azure Key Vault, depending on the deployment environment.
package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource selects where secrets are resolved from.
type SecretSource string

const (
	// SourceEnvironment reads plain environment variables.
	SourceEnvironment SecretSource = "environment"
	// SourceVault reads from Azure Key Vault.
	SourceVault SecretSource = "vault"
	// SourceAuto picks vault for staging/production, environment otherwise.
	SourceAuto SecretSource = "auto"
)

// ProviderConfig configures secret resolution.
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Provider resolves named secrets. With the environment source the name is
// an env var; with the vault source it is a Key Vault secret name.
type Provider struct {
	source SecretSource
	vault  *KeyVault
	logger *zap.Logger
}

// NewProvider builds a provider for the configured source. Auto resolves to
// the environment source for development/local and to Key Vault elsewhere.
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := cfg.Source
	if source == SourceAuto {
		if cfg.Environment == "development" || cfg.Environment == "local" || cfg.Environment == "" {
			source = SourceEnvironment
		} else {
			source = SourceVault
		}
		logger.Info("resolved secret source",
			zap.String("source", string(source)),
			zap.String("environment", cfg.Environment),
		)
	}

	p := &Provider{source: source, logger: logger}

	if source == SourceVault {
		ttl := cfg.CacheTTL
		if !cfg.CacheEnabled {
			ttl = 0
		} else if ttl == 0 {
			ttl = defaultCacheTTL
		}

		vault, err := NewKeyVault(cfg.VaultName, ttl, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = vault
	}

	return p, nil
}

// GetSecret resolves a secret from the configured source.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		if value := os.Getenv(name); value != "" {
			return value, nil
		}
		return "", fmt.Errorf("environment variable '%s' not set", name)
	case SourceVault:
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv prefers an explicit env var override, then falls back to
// the configured source.
func (p *Provider) GetSecretOrEnv(ctx context.Context, name, envName string) (string, error) {
	if value := os.Getenv(envName); value != "" {
		p.logger.Debug("using environment override", zap.String("env_name", envName))
		return value, nil
	}
	return p.GetSecret(ctx, name)
}
