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

	"github.com/shnkreddy98/airfold-backend/config"
	httpapi "github.com/shnkreddy98/airfold-backend/internal/api/http"
	"github.com/shnkreddy98/airfold-backend/internal/bootstrap"
	cronjob "github.com/shnkreddy98/airfold-backend/internal/feature_execution/cron"
	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/service"
	projectsvc "github.com/shnkreddy98/airfold-backend/internal/projects/service"
	"github.com/shnkreddy98/airfold-backend/internal/remote"
)

const serviceName = "airfold-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	store, err := bootstrap.OpenFallbackStore(ctx, cfg.Fallback)
	if err != nil {
		log.Fatalf("fallback store: %v", err)
	}

	client := remote.NewClientWithTimeouts(cfg.Remote.BaseURL, cfg.Remote.CRUDTimeout, cfg.Remote.ExecuteTimeout)
	coordinator := service.NewCoordinator(store, client, client)
	directory := projectsvc.NewDirectory(store, client)

	refresher := cronjob.NewRefresher(cfg.Fallback.RefreshCron, coordinator, directory)
	if err := refresher.Start(); err != nil {
		log.Fatalf("mirror refresher: %v", err)
	}
	defer refresher.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Coordinator: coordinator,
		Directory:   directory,
		Fallback:    store.(httpapi.Pinger),
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("%s listening on :%s", serviceName, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// In-flight execute calls keep running remotely; only the HTTP side drains.
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
