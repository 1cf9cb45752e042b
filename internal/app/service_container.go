package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"boundless-travel/internal/clients"
	"boundless-travel/internal/config"
	"boundless-travel/internal/db"
	"boundless-travel/internal/events"
	"boundless-travel/internal/handlers"
	"boundless-travel/internal/middleware"
	"boundless-travel/internal/repository"
	"boundless-travel/internal/router"
	"boundless-travel/internal/services"
	"boundless-travel/internal/state"
	"boundless-travel/internal/utils"
	"boundless-travel/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ServiceContainer wires every service of the travel backend
type ServiceContainer struct {
	Config *config.Config
	Logger *logrus.Logger

	// Storage & events, both optional
	DB         *gorm.DB
	NATSClient *clients.NATSClient

	// Repositories
	MintAttemptRepo repository.MintAttemptRepository

	// Core
	Chains        *utils.ChainRegistry
	Contracts     config.ContractSet
	URLs          config.ExternalURLs
	TravelClient  *clients.TravelClient
	Sessions      *state.Store
	Wallets       *wallet.Registry
	Tokens        *middleware.TokenManager
	AdminTokens   *middleware.AdminTokenManager
	Balances      *services.BalanceService
	Onboarding    *services.OnboardingService
	VPass         *services.VPassService
	Confirmer     *services.ConfirmationService
	Notifications *services.NotificationService
	Mint          *services.MintOrchestrator

	walletMu sync.Mutex
	operator wallet.Wallet
}

// NewServiceContainer builds the container; database and NATS failures degrade to
// in-memory storage and no event publishing.
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	log.Println("🚀 Initializing Service Container...")

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	c := &ServiceContainer{
		Config:    cfg,
		Logger:    logger,
		Chains:    utils.NewChainRegistry(cfg.Environment, cfg.Chains.RPCOverrides),
		Contracts: cfg.Contracts.ForEnvironment(cfg.Environment),
		URLs:      cfg.ExternalURLs.ForEnvironment(cfg.Environment),
		Sessions:  state.NewStore(),
	}

	c.initStorage()
	c.initEvents()
	if err := c.initCoreServices(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to initialize core services: %w", err)
	}

	log.Println("✅ Service Container initialized successfully")
	return c, nil
}

// initStorage opens postgres when enabled, otherwise attempts stay in memory
func (c *ServiceContainer) initStorage() {
	if c.Config.Database.Enabled {
		gdb, err := db.Open(c.Config.Database.DSN)
		if err == nil {
			c.DB = gdb
			c.MintAttemptRepo = repository.NewMintAttemptRepository(gdb)
			return
		}
		log.Printf("⚠️ Database unavailable, keeping mint attempts in memory: %v", err)
	}
	c.MintAttemptRepo = repository.NewMemoryMintAttemptRepository()
}

func (c *ServiceContainer) initEvents() {
	if !c.Config.NATS.Enabled {
		log.Println("ℹ️ NATS disabled, mint events are not published")
		return
	}
	client, err := clients.NewNATSClient(c.Config.NATS)
	if err != nil {
		log.Printf("⚠️ Event services initialization skipped: %v", err)
		return
	}
	c.NATSClient = client
}

func (c *ServiceContainer) initCoreServices() error {
	log.Println("📦 Initializing Core Services...")
	cfg := c.Config

	// CLI commands run without a JWT secret; the server refuses to start without one
	if cfg.Auth.JWTSecret != "" {
		c.Tokens = middleware.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	}

	c.AdminTokens = middleware.NewAdminTokenManager(cfg.Admin.JWTSecret, time.Duration(cfg.Admin.TokenTTLMinutes)*time.Minute)

	c.TravelClient = clients.NewTravelClient(cfg.TravelAPI.BaseURL, time.Duration(cfg.TravelAPI.Timeout)*time.Second)

	wallets, err := c.buildWalletRegistry()
	if err != nil {
		return err
	}
	c.Wallets = wallets

	c.Balances = services.NewBalanceService(services.DialChainClient,
		time.Duration(cfg.Chains.BalanceTimeout)*time.Second, cfg.Chains.BalanceMaxConcurrency)
	c.Onboarding = services.NewOnboardingService(c.TravelClient)
	c.VPass = services.NewVPassService(c.Chains, c.Balances, services.DialChainClient, c.Contracts, c.URLs)
	c.Confirmer = services.NewConfirmationService(services.DialChainClient,
		cfg.Mint.ConfirmationTimeout(), cfg.Mint.ConfirmationPollInterval())
	c.Notifications = services.NewNotificationService(cfg.CORS.AllowedOrigins)

	var publisher events.Publisher = events.NopPublisher{}
	if c.NATSClient != nil {
		publisher = c.NATSClient
	}
	c.Mint = services.NewMintOrchestrator(services.MintOrchestratorDeps{
		Chains:    c.Chains,
		Backend:   c.TravelClient,
		Confirmer: c.Confirmer,
		Repo:      c.MintAttemptRepo,
		Publisher: publisher,
		Notifier:  c.Notifications,
		Contracts: c.Contracts,
		Mint:      cfg.Mint,
	})
	return nil
}

// buildWalletRegistry registers the local key and every configured signer endpoint
func (c *ServiceContainer) buildWalletRegistry() (*wallet.Registry, error) {
	registry := wallet.NewRegistry()
	if c.Config.Wallet.PrivateKey != "" {
		key, err := wallet.ParsePrivateKey(c.Config.Wallet.PrivateKey)
		if err != nil {
			return nil, err
		}
		registry.Register(wallet.NewLocalKeyConnector(key, c.Chains, wallet.DialEthClient, c.Chains.Home().ID))
	}
	for name, endpoint := range c.Config.Wallet.Endpoints {
		kind, err := wallet.ParseConnectorKind(name)
		if err != nil {
			return nil, fmt.Errorf("wallet.endpoints: %w", err)
		}
		if kind == wallet.ConnectorLocalKey {
			continue
		}
		registry.Register(wallet.NewRPCConnector(kind, endpoint, wallet.DialRPC))
	}
	return registry, nil
}

// OperatorWallet connects the configured operator wallet once and reuses it
func (c *ServiceContainer) OperatorWallet(ctx context.Context) (wallet.Wallet, error) {
	c.walletMu.Lock()
	defer c.walletMu.Unlock()
	if c.operator != nil {
		return c.operator, nil
	}
	kind, err := wallet.ParseConnectorKind(c.Config.Wallet.Connector)
	if err != nil {
		return nil, err
	}
	w, err := c.Wallets.Connect(ctx, kind)
	if err != nil {
		return nil, err
	}
	log.Printf("🔑 Operator wallet %s connected through %s", w.Address().Hex(), kind)
	c.operator = w
	return w, nil
}

// HealthChecks dependencies reported by /health
func (c *ServiceContainer) HealthChecks() map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if c.DB != nil {
		checks["database"] = func(context.Context) error { return db.Ping(c.DB) }
	}
	if c.NATSClient != nil {
		checks["nats"] = c.NATSClient.Healthy
	}
	return checks
}

// Router mounts every handler on a new engine
func (c *ServiceContainer) Router() *gin.Engine {
	return router.SetupRouter(router.Handlers{
		Health:     handlers.NewHealthHandler(c.Config.Environment, c.HealthChecks()),
		Chains:     handlers.NewChainHandler(c.Chains),
		Navigation: handlers.NewNavigationHandler(c.URLs, c.Sessions),
		Auth:       handlers.NewAuthHandler(c.Tokens, handlers.NewNonceStore(), c.Sessions, c.Onboarding),
		Admin:      handlers.NewAdminAuthHandler(c.Config.Admin, c.AdminTokens),
		Onboarding: handlers.NewOnboardingHandler(c.Onboarding, c.Sessions),
		VPass:      handlers.NewVPassHandler(c.VPass, c.Onboarding, c.Sessions),
		Mint:       handlers.NewMintHandler(c.Mint, c.OperatorWallet),
		WebSocket:  handlers.NewWebSocketHandler(c.Notifications),
	}, router.Options{
		Logger:         c.Logger,
		Auth:           middleware.NewAuthMiddleware(c.Logger, c.Tokens),
		AdminAuth:      middleware.NewAdminAuthMiddleware(c.Logger, c.AdminTokens),
		LocalhostOnly:  middleware.NewLocalhostOnly(c.Logger, c.Config.Server.AdminAllowedIPs),
		CORS:           middleware.CORS(c.Config.CORS),
		TrustedProxies: c.Config.Server.TrustedProxies,
	})
}

// WaitForMints cancels in-flight attempts, then blocks until they settle or timeout passes
func (c *ServiceContainer) WaitForMints(timeout time.Duration) bool {
	if n := c.Mint.CancelAll(); n > 0 {
		log.Printf("🛑 Cancelled %d in-flight mint attempt(s)", n)
	}
	done := make(chan struct{})
	go func() {
		c.Mint.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Cleanup stops background work and releases connections
func (c *ServiceContainer) Cleanup() {
	log.Println("🧹 Cleaning up Service Container...")
	if c.Notifications != nil {
		c.Notifications.Close()
	}
	if c.NATSClient != nil {
		c.NATSClient.Close()
	}
	if c.DB != nil {
		if err := db.Close(c.DB); err != nil {
			log.Printf("⚠️ Failed to close database: %v", err)
		}
	}
}
