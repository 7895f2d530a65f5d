// Package httpserver wires the ledger components together and routes the http api.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/market-ledger/internal/accountdelivery"
	"github.com/go-petr/market-ledger/internal/accountrepo"
	"github.com/go-petr/market-ledger/internal/accountservice"
	"github.com/go-petr/market-ledger/internal/events"
	"github.com/go-petr/market-ledger/internal/events/kafka"
	"github.com/go-petr/market-ledger/internal/itemrepo"
	"github.com/go-petr/market-ledger/internal/marketdelivery"
	"github.com/go-petr/market-ledger/internal/marketservice"
	"github.com/go-petr/market-ledger/internal/middleware"
	"github.com/go-petr/market-ledger/internal/reportdelivery"
	"github.com/go-petr/market-ledger/internal/reportservice"
	"github.com/go-petr/market-ledger/internal/snapshotrepo"
	"github.com/go-petr/market-ledger/internal/snapshotservice"
	"github.com/go-petr/market-ledger/internal/transactionrepo"
	"github.com/go-petr/market-ledger/internal/transferdelivery"
	"github.com/go-petr/market-ledger/internal/transferrepo"
	"github.com/go-petr/market-ledger/internal/transferservice"
	"github.com/go-petr/market-ledger/internal/userdelivery"
	"github.com/go-petr/market-ledger/internal/userrepo"
	"github.com/go-petr/market-ledger/internal/userservice"
	"github.com/go-petr/market-ledger/pkg/configpkg"
	"github.com/go-petr/market-ledger/pkg/dbpkg"
	"github.com/go-petr/market-ledger/pkg/moneypkg"
)

// Store is a snapshot store that holds a connection or file handle.
type Store interface {
	snapshotservice.Store
	Close() error
}

// Server holds the routed engine together with the components the commands drive directly.
type Server struct {
	Engine    *gin.Engine
	Config    configpkg.Config
	Snapshots *snapshotservice.Service
	Reports   *reportservice.Engine

	store     Store
	publisher events.Publisher
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases the snapshot store and the event publisher.
func (s *Server) Close() error {
	return errors.Join(s.publisher.Close(), s.store.Close())
}

// NewStore opens the snapshot store selected by DB_DRIVER.
func NewStore(ctx context.Context, config configpkg.Config) (Store, error) {
	switch config.DBDriver {
	case configpkg.DriverFile:
		return snapshotrepo.NewRepoFile(config.DBSource), nil
	case configpkg.DriverPostgres, configpkg.DriverSQLite:
		db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", config.DBDriver, err)
		}

		repo, err := snapshotrepo.NewRepoSQL(ctx, db, config.DBDriver)
		if err != nil {
			db.Close()
			return nil, err
		}

		return repo, nil
	}

	return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.DBDriver)
}

// NewPublisher returns a kafka publisher when brokers are configured and a no-op one otherwise.
func NewPublisher(config configpkg.Config, logger zerolog.Logger) events.Publisher {
	if brokers := config.Brokers(); len(brokers) > 0 {
		return kafka.NewPublisher(brokers, config.KafkaTopic, logger)
	}

	return events.Nop{}
}

// RegisterValidators adds the custom binding tags used by the request types.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator")
	}

	validators := map[string]validator.Func{
		"money":  moneypkg.ValidMoney,
		"role":   userdelivery.ValidRole,
		"status": reportdelivery.ValidStatus,
	}

	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}

	return nil
}

// New creates Server type with instantiated domains and routes.
//
// The state stored in the snapshot store, if any, is loaded before the routes are served.
func New(ctx context.Context, logger zerolog.Logger, config configpkg.Config, store Store, publisher events.Publisher) (*Server, error) {
	ctx = logger.WithContext(ctx)

	accountRepo := accountrepo.NewRepoMem(time.Now)
	userRepo := userrepo.NewRepoMem(time.Now)
	itemRepo := itemrepo.NewRepoMem()
	transactionRepo := transactionrepo.NewRepoMem(time.Now)
	transferRepo := transferrepo.NewRepoMem(accountRepo)

	// Flows that write to several repos hold state shared. Snapshot export and restore hold it exclusively.
	state := &sync.RWMutex{}

	userService := userservice.New(userRepo, accountRepo).WithStateLock(state)
	accountService := accountservice.New(accountRepo)
	transferService := transferservice.New(transferRepo, accountRepo)
	marketService := marketservice.New(userRepo, itemRepo, transactionRepo, transferService, publisher).WithStateLock(state)
	reportEngine := reportservice.New(accountRepo, transactionRepo, userRepo)
	snapshotService := snapshotservice.New(accountRepo, userRepo, itemRepo, transactionRepo, store).WithStateLock(state)

	loaded, err := snapshotService.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if !loaded {
		logger.Info().Str("driver", config.DBDriver).Msg("no snapshot found, starting empty")
	}

	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	userHandler := userdelivery.NewHandler(userService)
	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)
	marketHandler := marketdelivery.NewHandler(marketService)
	reportHandler := reportdelivery.NewHandler(reportEngine)

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.GET("/users", userHandler.List)
	engine.GET("/users/:id", userHandler.Get)
	engine.GET("/users/:id/orders", reportHandler.Orders)

	engine.GET("/accounts/:owner", accountHandler.Get)
	engine.POST("/accounts/:owner/topup", accountHandler.TopUp)
	engine.POST("/accounts/:owner/withdraw", accountHandler.Withdraw)
	engine.GET("/accounts/:owner/entries", accountHandler.Entries)

	engine.POST("/transfers", transferHandler.Create)

	engine.POST("/items", marketHandler.CreateItem)
	engine.POST("/items/:id/replenish", marketHandler.Replenish)
	engine.POST("/items/:id/discard", marketHandler.Discard)
	engine.GET("/sellers/:id/items", marketHandler.ListItems)
	engine.POST("/purchases", marketHandler.Purchase)
	engine.POST("/transactions/:id/complete", marketHandler.Complete)
	engine.POST("/transactions/:id/cancel", marketHandler.Cancel)

	reports := engine.Group("/reports")
	reports.GET("/bank-activity", reportHandler.BankActivity)
	reports.GET("/cash-flow/:id", reportHandler.CashFlow)
	reports.GET("/customers", reportHandler.Customers)
	reports.GET("/dormant-accounts", reportHandler.DormantAccounts)
	reports.GET("/top-users-today", reportHandler.TopUsersToday)
	reports.GET("/transactions", reportHandler.Transactions)
	reports.GET("/paid-uncompleted", reportHandler.PaidUncompleted)
	reports.GET("/top-items", reportHandler.TopItems)
	reports.GET("/top-buyers", reportHandler.TopBuyers)
	reports.GET("/top-sellers", reportHandler.TopSellers)
	reports.GET("/spending/:id", reportHandler.Spending)
	reports.GET("/popular-items/:id", reportHandler.PopularItems)
	reports.GET("/loyal-customer/:id", reportHandler.LoyalCustomer)

	server := &Server{
		Engine:    engine,
		Config:    config,
		Snapshots: snapshotService,
		Reports:   reportEngine,
		store:     store,
		publisher: publisher,
	}

	return server, nil
}
