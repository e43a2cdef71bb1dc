package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/httpserver"
	addressrepo "storefront-api/internal/repository/address"
	cartrepo "storefront-api/internal/repository/cart"
	inventoryrepo "storefront-api/internal/repository/inventory"
	orderrepo "storefront-api/internal/repository/order"
	productrepo "storefront-api/internal/repository/product"
	sessionrepo "storefront-api/internal/repository/session"
	"storefront-api/internal/repository/txn"
	userrepo "storefront-api/internal/repository/user"
	addresssvc "storefront-api/internal/service/address"
	cartsvc "storefront-api/internal/service/cart"
	inventorysvc "storefront-api/internal/service/inventory"
	ordersvc "storefront-api/internal/service/order"
	productsvc "storefront-api/internal/service/product"
	sessionsvc "storefront-api/internal/service/session"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	beginner := txn.NewPostgresBeginner(dbpool, cfg.TxTimeout)

	inventoryRepo := inventoryrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	userRepo := userrepo.NewPostgres(dbpool)
	addressRepo := addressrepo.NewPostgres(dbpool)
	sessionRepo := sessionrepo.NewPostgres(dbpool)

	inventoryService := inventorysvc.New(inventoryRepo, logger)
	productService := productsvc.New(productRepo, inventoryService, logger)
	cartService := cartsvc.New(cartRepo, productRepo, inventoryService, logger)
	orderService := ordersvc.New(beginner, cartRepo, orderRepo, inventoryRepo, addressRepo, nil, logger)
	addressService := addresssvc.New(addressRepo)
	sessionService := sessionsvc.New(sessionRepo, userRepo, cartService, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions:  sessionService,
		Carts:     cartService,
		Orders:    orderService,
		Products:  productService,
		Addresses: addressService,
		Inventory: inventoryService,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runSweeper(sweepCtx, cfg.SweepInterval, cartService, sessionService, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// runSweeper periodically releases reservations held by carts of expired
// sessions, then purges the session rows. Carts go first so the stock comes
// back before the session disappears.
func runSweeper(ctx context.Context, interval time.Duration, carts *cartsvc.Service, sessions *sessionsvc.Service, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := carts.ReleaseExpired(ctx); err != nil {
				logger.Printf("sweep carts: %v", err)
				continue
			}
			if _, err := sessions.DeleteExpired(ctx); err != nil {
				logger.Printf("sweep sessions: %v", err)
			}
		}
	}
}
