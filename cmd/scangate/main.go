package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"scangate/frontend/license"
	"scangate/frontend/process"
	"scangate/frontend/scanning"
	"scangate/infrastructure/audit"
	"scangate/infrastructure/cache"
	"scangate/infrastructure/config"
	httpserver "scangate/infrastructure/http"
	"scangate/infrastructure/rbac"
	"scangate/infrastructure/sqlite"
	"scangate/infrastructure/wms"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sqlite.OpenDB(cfg.Sqlite.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	migrationsDir := cfg.Sqlite.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "infrastructure/sqlite/migrations"
	}
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		log.Fatalf("init cache store: %v", err)
	}
	defer closeStore()

	wmsClient := wms.NewClient(cfg.WMS.BaseURL, cfg.WMS.APIKey, cfg.WMS.Timeout)

	sessionCache := cache.NewUserSessionCache()
	userCache := cache.NewUserCache()
	rbacCache := cache.NewRbacRolesCache()
	rbacSvc := rbac.New(rbacCache)
	auditSvc := audit.NewService()
	flow := process.NewFlow(scanning.NewStore(store, cfg.Cache.SessionTTL), wmsClient, db, auditSvc)
	licenseSvc := license.NewService(wmsClient, store, cfg.Cache.LicenseTTL)

	httpserver.ShutdownTimeout = cfg.Server.ShutdownTimeout
	server := httpserver.NewServer(cfg.Server.Addr, db, sessionCache, userCache, rbacSvc, rbacCache, auditSvc, flow, licenseSvc)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	log.Printf("scangate listening on %s", cfg.Server.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func newStore(cfg *config.Config) (cache.Store, func(), error) {
	if cfg.Cache.Type == "redis" {
		store, err := cache.NewRedisStore(cache.RedisStoreConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	store := cache.NewMemoryStore()
	return store, store.Close, nil
}
