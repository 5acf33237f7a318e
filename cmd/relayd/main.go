// Command relayd is the relay's process entrypoint: it wires C1-C9 and
// the httpapi transport together and runs until an OS signal arrives,
// generalized from the teacher's cmd.Start/cmd/server.go wiring.
package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"

	"relayhub/internal/allocator"
	"relayhub/internal/chain"
	"relayhub/internal/config"
	"relayhub/internal/counter"
	"relayhub/internal/httpapi"
	"relayhub/internal/policy"
	"relayhub/internal/relay"
	"relayhub/internal/signer"
	"relayhub/internal/store"
	"relayhub/internal/tracker"
	"relayhub/internal/verify"
	"relayhub/pkg/jwt"
	"relayhub/pkg/log"
)

const counterLargestWindow = 24 * time.Hour

func main() {
	if err := start(); err != nil {
		os.Exit(1)
	}
}

func start() error {
	logger := log.NewZapLogger("relayd", zapcore.InfoLevel)

	cfg, err := config.New()
	if err != nil {
		logger.Errorw("failed to load config", "error", err)
		return err
	}

	st, err := store.Open(cfg.DBConnectionURL)
	if err != nil {
		logger.Errorw("failed to connect to database", "error", err)
		return err
	}

	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		logger.Errorw("failed to migrate database", "error", err)
		return err
	}

	if cfg.AdminBootstrapPassword != "" {
		hash, err := bcryptHash(cfg.AdminBootstrapPassword)
		if err != nil {
			logger.Errorw("failed to hash admin bootstrap password", "error", err)
			return err
		}
		if err := st.BootstrapOperator(ctx, "admin", hash); err != nil {
			logger.Errorw("failed to bootstrap admin operator", "error", err)
			return err
		}
	}

	registry := chain.NewRegistry()
	for _, network := range cfg.Networks {
		if err := registry.Dial(network.Name, network.ChainID, network.RPCURL, network.ForwarderAddress, chain.DefaultRetryPolicy()); err != nil {
			logger.Errorw("failed to dial network", "network", network.Name, "error", err)
			return err
		}
	}

	signerImpl, err := buildSigner(cfg)
	if err != nil {
		logger.Errorw("failed to build signer", "error", err)
		return err
	}

	maxTxValue, ok := new(big.Int).SetString(cfg.MaxTxValue, 10)
	if !ok {
		return fmt.Errorf("invalid RELAY_MAX_TX_VALUE: %q", cfg.MaxTxValue)
	}
	verifier := verify.New(registry, verify.Ceilings{MaxGasLimit: uint64(cfg.MaxGasLimit), MaxTxValue: maxTxValue})

	counterCache := buildCounterCache(cfg, st)

	policyEngine := policy.New(policy.StoreAdapter{Store: st}, counterCache, logger)
	if err := policyEngine.Reload(ctx); err != nil {
		logger.Errorw("failed to load initial policy rules", "error", err)
		return err
	}

	alloc := allocator.New(registry, st, cfg.AllocatorSaturation)

	pipeline := relay.New(verifier, policyEngine, registry, signerImpl, alloc, st, counterCache, relay.Config{
		FeeMultiplierBps: cfg.FeeMultiplierBps,
		GasHeadroomBps:   cfg.GasHeadroomBps,
	})

	trckr := tracker.New(registry, alloc, st, logger, tracker.Config{
		ScanInterval: cfg.ScanInterval,
		GraceWindow:  cfg.DroppedGraceWindow,
	})

	health := httpapi.NewHealthState()
	health.MarkStoreHealthy()
	health.MarkCounterHealthy()
	health.MarkChainsHealthy()

	jwtIssuer := newJWTIssuer(cfg.JWTSecret)
	auth := httpapi.NewAuthenticator(st, jwtIssuer)

	relayHlr := httpapi.NewRelayHandler(logger, pipeline, st)
	adminHlr := httpapi.NewAdminHandler(logger, auth, st, policyEngine)
	healthHlr := httpapi.NewHealthHandler(logger, health)
	router := httpapi.NewRouter(logger, relayHlr, adminHlr, healthHlr)

	srv := httpapi.NewServer(logger, router, cfg.Port)

	reloadCtx, cancelReload := context.WithCancel(ctx)
	defer cancelReload()
	go policyEngine.RunReloadLoop(reloadCtx, cfg.ScanInterval)

	trackerCtx, cancelTracker := context.WithCancel(ctx)
	defer cancelTracker()
	go trckr.Run(trackerCtx)

	return run(srv)
}

func run(srv *httpapi.Server) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	errChan := srv.Run()

	var err error
	select {
	case <-sig:
	case err = <-errChan:
	}

	sdErr := srv.Shutdown()
	if err == http.ErrServerClosed && sdErr != nil {
		return fmt.Errorf("server shutdown: %w", sdErr)
	}
	return err
}

func buildSigner(cfg config.Config) (relay.Signer, error) {
	switch cfg.SignerKind {
	case config.SignerKindHosted:
		return signer.NewHosted(signer.NewHTTPTransport(cfg.SignerRemoteURL)), nil
	default:
		key, err := parsePrivateKey(cfg.SignerPrivateKeyHex)
		if err != nil {
			return nil, fmt.Errorf("parse signer private key: %w", err)
		}
		return signer.NewLocalKey(key), nil
	}
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
}

func bcryptHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func newJWTIssuer(secret string) *jwt.Issuer {
	return jwt.NewIssuer([]byte(secret))
}

func buildCounterCache(cfg config.Config, st *store.Store) counter.Cache {
	if cfg.CounterCacheKind == config.CounterCacheStore {
		return counter.NewStoreBacked(st, counterLargestWindow)
	}
	return counter.NewMemory(counterLargestWindow)
}
