package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

// KeyVault reads secrets from an Azure Key Vault, with an optional in-process
// cache so repeated lookups during startup don't hammer the vault.
type KeyVault struct {
	client   *azsecrets.Client
	logger   *zap.Logger
	cacheTTL time.Duration // zero disables caching

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	value   string
	staleAt time.Time
}

// NewKeyVault connects to the named vault using DefaultAzureCredential, so
// managed identity works in Azure and `az login` works on a developer machine.
func NewKeyVault(vaultName string, cacheTTL time.Duration, logger *zap.Logger) (*KeyVault, error) {
	if vaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", vaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	logger.Info("Key Vault client ready",
		zap.String("vault_url", vaultURL),
		zap.Duration("cache_ttl", cacheTTL),
	)

	return &KeyVault{
		client:   client,
		logger:   logger,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cacheEntry),
	}, nil
}

// GetSecret fetches the latest version of a secret.
func (kv *KeyVault) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := kv.cached(name); ok {
		return value, nil
	}

	resp, err := kv.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		kv.logger.Error("Key Vault secret lookup failed",
			zap.String("secret_name", name),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get secret '%s': %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", name)
	}

	value := *resp.Value
	kv.store(name, value)
	return value, nil
}

func (kv *KeyVault) cached(name string) (string, bool) {
	if kv.cacheTTL <= 0 {
		return "", false
	}

	kv.mu.RLock()
	entry, ok := kv.cache[name]
	kv.mu.RUnlock()

	if !ok || time.Now().After(entry.staleAt) {
		return "", false
	}
	return entry.value, true
}

func (kv *KeyVault) store(name, value string) {
	if kv.cacheTTL <= 0 {
		return
	}

	kv.mu.Lock()
	kv.cache[name] = cacheEntry{value: value, staleAt: time.Now().Add(kv.cacheTTL)}
	kv.mu.Unlock()
}
