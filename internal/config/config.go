// Package config loads the relay's single immutable start-up configuration
// object from the environment, in the teacher's lookup-and-wrap style.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

var ErrEnvVarNotFound = errors.New("environment variable not found")

const (
	portEnvKey                = "API_PORT"
	dbConnEnvKey              = "DB_CONNECTION_URL"
	jwtSecretEnvKey           = "JWT_SECRET"
	networksEnvKey            = "RELAY_NETWORKS"
	signerKindEnvKey          = "SIGNER_KIND"
	signerKeyEnvKey           = "SIGNER_PRIVATE_KEY"
	signerRemoteURLEnvKey     = "SIGNER_REMOTE_URL"
	maxGasLimitEnvKey         = "RELAY_MAX_GAS_LIMIT"
	maxTxValueEnvKey          = "RELAY_MAX_TX_VALUE"
	feeMultiplierBpsEnvKey    = "RELAY_FEE_MULTIPLIER_BPS"
	gasHeadroomBpsEnvKey      = "RELAY_GAS_HEADROOM_BPS"
	saturationThresholdEnvKey = "RELAY_ALLOCATOR_SATURATION"
	scanIntervalEnvKey        = "RELAY_CONFIRMATION_SCAN_INTERVAL"
	droppedGraceWindowEnvKey  = "RELAY_DROPPED_GRACE_WINDOW"
	counterCacheKindEnvKey    = "RELAY_COUNTER_CACHE_KIND"
	adminBootstrapPasswordEnv = "ADMIN_BOOTSTRAP_PASSWORD"
)

// NetworkConfig describes one chain the relay can submit to.
type NetworkConfig struct {
	Name             string `json:"name"`
	ChainID          int64  `json:"chainId"`
	RPCURL           string `json:"rpcUrl"`
	ForwarderAddress string `json:"forwarderAddress"`
}

// SignerKind selects which Signer Capability (C1) implementation is wired.
type SignerKind string

const (
	SignerKindLocal  SignerKind = "local"
	SignerKindHosted SignerKind = "hosted"
)

// CounterCacheKind selects which Counter Cache (C7) backend is wired.
type CounterCacheKind string

const (
	CounterCacheMemory CounterCacheKind = "memory"
	CounterCacheStore  CounterCacheKind = "store"
)

// Config is the relay's immutable start-up configuration.
type Config struct {
	Port            string
	DBConnectionURL string
	JWTSecret       string
	Networks        []NetworkConfig

	SignerKind          SignerKind
	SignerPrivateKeyHex string
	SignerRemoteURL     string

	MaxGasLimit         int64
	MaxTxValue          string
	FeeMultiplierBps    int64
	GasHeadroomBps      int64
	AllocatorSaturation int
	ScanInterval        time.Duration
	DroppedGraceWindow  time.Duration
	CounterCacheKind    CounterCacheKind

	AdminBootstrapPassword string
}

// New reads and validates the relay's configuration from the environment.
func New() (Config, error) {
	port, ok := os.LookupEnv(portEnvKey)
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrEnvVarNotFound, portEnvKey)
	}

	dbConn, ok := os.LookupEnv(dbConnEnvKey)
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrEnvVarNotFound, dbConnEnvKey)
	}

	jwtSecret, ok := os.LookupEnv(jwtSecretEnvKey)
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrEnvVarNotFound, jwtSecretEnvKey)
	}

	networksRaw, ok := os.LookupEnv(networksEnvKey)
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrEnvVarNotFound, networksEnvKey)
	}

	var networks []NetworkConfig
	if err := json.Unmarshal([]byte(networksRaw), &networks); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", networksEnvKey, err)
	}
	if len(networks) == 0 {
		return Config{}, fmt.Errorf("%s must configure at least one network", networksEnvKey)
	}

	cfg := Config{
		Port:                   port,
		DBConnectionURL:        dbConn,
		JWTSecret:              jwtSecret,
		Networks:               networks,
		SignerKind:             SignerKind(getEnvOr(signerKindEnvKey, string(SignerKindLocal))),
		SignerPrivateKeyHex:    os.Getenv(signerKeyEnvKey),
		SignerRemoteURL:        os.Getenv(signerRemoteURLEnvKey),
		MaxGasLimit:            getEnvInt64Or(maxGasLimitEnvKey, 2_000_000),
		MaxTxValue:             getEnvOr(maxTxValueEnvKey, "1000000000000000000000"), // 1000 native units
		FeeMultiplierBps:       getEnvInt64Or(feeMultiplierBpsEnvKey, 11_000),        // 1.1x
		GasHeadroomBps:         getEnvInt64Or(gasHeadroomBpsEnvKey, 12_000),          // 1.2x
		AllocatorSaturation:    int(getEnvInt64Or(saturationThresholdEnvKey, 64)),
		ScanInterval:           getEnvDurationOr(scanIntervalEnvKey, 15*time.Second),
		DroppedGraceWindow:     getEnvDurationOr(droppedGraceWindowEnvKey, 10*time.Minute),
		CounterCacheKind:       CounterCacheKind(getEnvOr(counterCacheKindEnvKey, string(CounterCacheMemory))),
		AdminBootstrapPassword: os.Getenv(adminBootstrapPasswordEnv),
	}

	if cfg.SignerKind == SignerKindLocal && cfg.SignerPrivateKeyHex == "" {
		return Config{}, fmt.Errorf("%w: %s", ErrEnvVarNotFound, signerKeyEnvKey)
	}
	if cfg.SignerKind == SignerKindHosted && cfg.SignerRemoteURL == "" {
		return Config{}, fmt.Errorf("%w: %s", ErrEnvVarNotFound, signerRemoteURLEnvKey)
	}

	return cfg, nil
}

func getEnvOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt64Or(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var parsed int64
	if _, err := fmt.Sscanf(v, "%d", &parsed); err != nil {
		return fallback
	}
	return parsed
}

func getEnvDurationOr(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
