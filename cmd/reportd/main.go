package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"repohealth/internal/archive"
	"repohealth/internal/config"
	"repohealth/internal/engine"
	"repohealth/internal/enhance"
	"repohealth/internal/reportstore"
	"repohealth/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	eng := newEngine(context.Background(), cfg)
	srv := server.New(cfg.Port, server.NewMux(server.NewHandler(eng)))

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := eng.Close(); err != nil {
		log.Printf("Store close error: %v", err)
	}

	log.Println("Server exiting")
}

func newEngine(ctx context.Context, cfg *config.Config) *engine.Engine {
	store := reportstore.NewFromEnv()

	var arch *archive.S3Archive
	if s3 := archiveConfig(cfg); s3.Enabled() {
		a, err := archive.NewS3(s3)
		if err != nil {
			log.Printf("Archive disabled: %v", err)
		} else {
			arch = a
		}
	}

	providers := engine.ProvidersFromConfig(ctx, cfg, log.Default())
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, string(p.Name))
	}
	if len(names) == 0 {
		names = append(names, "none, local heuristics only")
	}
	log.Printf("Report engine ready: store=%s mode=%s providers=%s", store.Backend(), cfg.Mode, strings.Join(names, ","))

	return engine.New(engine.Options{
		Orchestrator: enhance.New(cfg.ProviderTimeout, providers...),
		Store:        store,
		Archive:      arch,
		Mode:         cfg.Mode,
		LocalWeight:  cfg.LocalWeight,
		CacheEntries: cfg.Cache.Entries,
		CacheTTL:     cfg.Cache.TTL,
	})
}

func archiveConfig(cfg *config.Config) archive.S3Config {
	return archive.S3Config{
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		UseSSL:    cfg.Archive.UseSSL,
	}
}
