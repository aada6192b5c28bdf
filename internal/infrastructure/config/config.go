// Package config provides configuration loading for the repo-mirror application.
// It handles loading repository URLs, sync options, and access tokens from
// environment variables and HashiCorp Vault.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/vault"
)

// Environment variable names.
const (
	// EnvSourceRepo is the source repository URL.
	EnvSourceRepo = "MIRROR_SOURCE_REPO"

	// EnvDestRepo is the destination repository URL.
	EnvDestRepo = "MIRROR_DEST_REPO"

	// EnvSourceBranch is the source branch name.
	EnvSourceBranch = "MIRROR_SOURCE_BRANCH"

	// EnvDestBranch is the destination branch name.
	EnvDestBranch = "MIRROR_DEST_BRANCH"

	// EnvAllBranches enables all-branch mode.
	EnvAllBranches = "MIRROR_ALL_BRANCHES"

	// EnvSyncTags is "true", a tag pattern, or unset.
	EnvSyncTags = "MIRROR_SYNC_TAGS"

	// EnvMainFallback enables the main/master fallback (defaults to true).
	EnvMainFallback = "MIRROR_MAIN_FALLBACK"

	// EnvSourceToken is the access token for the source repository.
	EnvSourceToken = "MIRROR_SOURCE_TOKEN"

	// EnvDestToken is the access token for the destination repository.
	EnvDestToken = "MIRROR_DEST_TOKEN"

	// EnvLogLevel is the log level (debug, info, error).
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogAppName is the application name for log context.
	EnvLogAppName = "LOG_APP_NAME"

	// EnvVaultTokensPath is the path in Vault KV where access tokens are stored.
	EnvVaultTokensPath = "VAULT_TOKENS_PATH"

	// EnvVaultTokensMount is the Vault KV mount point (defaults to "secret").
	EnvVaultTokensMount = "VAULT_TOKENS_MOUNT"
)

// Default values.
const (
	DefaultLogLevel     = "info"
	DefaultLogAppName   = "repo-mirror"
	DefaultSourceBranch = "main"
	DefaultVaultMount   = "secret"
)

// Vault secret keys for access tokens.
const (
	vaultKeySourceToken = "source_token"
	vaultKeyDestToken   = "dest_token"
)

// Configuration errors.
var (
	// ErrSourceRepoRequired indicates no source repository URL was provided.
	ErrSourceRepoRequired = errors.New("source repository required: set " + EnvSourceRepo + " or --source-repo")

	// ErrDestRepoRequired indicates no destination repository URL was provided.
	ErrDestRepoRequired = errors.New("destination repository required: set " + EnvDestRepo + " or --dest-repo")

	// ErrVaultClientFailed indicates failure to create or authenticate with Vault.
	ErrVaultClientFailed = errors.New("failed to create Vault client")

	// ErrVaultSecretNotFound indicates the token secret was not found in Vault.
	ErrVaultSecretNotFound = errors.New("access tokens not found in Vault")
)

// VaultClient defines the interface for Vault operations.
// This interface allows for dependency injection and testing.
type VaultClient interface {
	// GetKVSecret retrieves a secret from Vault's KV v2 secrets engine.
	GetKVSecret(ctx context.Context, path, mount string) (map[string]interface{}, error)
}

// VaultClientFactory creates a VaultClient using AppRole authentication.
// This is the default factory used in production.
type VaultClientFactory func(ctx context.Context) (VaultClient, error)

// DefaultVaultClientFactory creates a VaultClient using goLibMyCarrier/vault with AppRole auth.
func DefaultVaultClientFactory(ctx context.Context) (VaultClient, error) {
	// Uses: VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID
	vaultConfig, err := vault.VaultLoadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	client, err := vault.CreateVaultClient(ctx, vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	return client, nil
}

// Config holds all application configuration.
type Config struct {
	// SourceRepo is the source repository URL.
	SourceRepo string

	// DestRepo is the destination repository URL.
	DestRepo string

	// SourceBranch is the branch to mirror from the source.
	SourceBranch string

	// DestBranch is the branch name at the destination.
	DestBranch string

	// AllBranches enables all-branch mode.
	AllBranches bool

	// SyncTags is "true", a tag pattern, or empty.
	SyncTags string

	// MainFallback enables the main/master fallback.
	MainFallback bool

	// SourceToken is the access token for the source repository.
	SourceToken string

	// DestToken is the access token for the destination repository.
	DestToken string

	// LogLevel is the logging level (debug, info, error).
	LogLevel string

	// LogAppName is the application name for log context.
	LogAppName string
}

// Load loads the application configuration from environment variables.
// Access tokens are loaded from Vault when VAULT_TOKENS_PATH is set; the
// token environment variables always take precedence.
func Load() (*Config, error) {
	return LoadWithVaultClient(context.Background(), nil)
}

// LoadWithVaultClient loads configuration using the provided VaultClient factory.
// If vaultClientFactory is nil, DefaultVaultClientFactory is used.
// This function enables dependency injection for testing.
func LoadWithVaultClient(ctx context.Context, vaultClientFactory VaultClientFactory) (*Config, error) {
	cfg := &Config{
		SourceRepo:   os.Getenv(EnvSourceRepo),
		DestRepo:     os.Getenv(EnvDestRepo),
		SourceBranch: envOrDefault(EnvSourceBranch, DefaultSourceBranch),
		SyncTags:     os.Getenv(EnvSyncTags),
		AllBranches:  envBool(EnvAllBranches, false),
		MainFallback: envBool(EnvMainFallback, true),
		SourceToken:  os.Getenv(EnvSourceToken),
		DestToken:    os.Getenv(EnvDestToken),
		LogLevel:     envOrDefault(EnvLogLevel, DefaultLogLevel),
		LogAppName:   envOrDefault(EnvLogAppName, DefaultLogAppName),
	}

	// The destination branch mirrors the source branch name unless set.
	cfg.DestBranch = envOrDefault(EnvDestBranch, cfg.SourceBranch)

	if err := loadTokensFromVault(ctx, vaultClientFactory, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the required repository URLs are present. It runs
// after CLI flags have been merged in, so flag values count.
func (c *Config) Validate() error {
	if c.SourceRepo == "" {
		return ErrSourceRepoRequired
	}
	if c.DestRepo == "" {
		return ErrDestRepoRequired
	}
	return nil
}

// loadTokensFromVault fills unset tokens from Vault KV v2 when a tokens
// path is configured. A configured but unreachable Vault is a fatal
// configuration error.
func loadTokensFromVault(ctx context.Context, vaultClientFactory VaultClientFactory, cfg *Config) error {
	vaultPath := os.Getenv(EnvVaultTokensPath)
	if vaultPath == "" {
		return nil
	}
	if cfg.SourceToken != "" && cfg.DestToken != "" {
		// Environment tokens take precedence; nothing to fetch.
		return nil
	}

	if vaultClientFactory == nil {
		vaultClientFactory = DefaultVaultClientFactory
	}
	client, err := vaultClientFactory(ctx)
	if err != nil {
		return err
	}

	mount := envOrDefault(EnvVaultTokensMount, DefaultVaultMount)
	secretData, err := client.GetKVSecret(ctx, vaultPath, mount)
	if err != nil {
		return fmt.Errorf("%w at path %s: %w", ErrVaultSecretNotFound, vaultPath, err)
	}

	if cfg.SourceToken == "" {
		cfg.SourceToken, _ = secretData[vaultKeySourceToken].(string)
	}
	if cfg.DestToken == "" {
		cfg.DestToken, _ = secretData[vaultKeyDestToken].(string)
	}

	return nil
}

func envOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func envBool(key string, def bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}
