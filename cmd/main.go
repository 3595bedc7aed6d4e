package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"prerender/internal/config"
	"prerender/internal/core/job"
	"prerender/internal/core/meta"
	"prerender/internal/core/prerender"
	"prerender/internal/core/render"
	"prerender/internal/core/settings"
	"prerender/internal/core/sitemap"
	"prerender/internal/core/snapshot"
	"prerender/internal/logger"
	rds "prerender/internal/platform/redis"
	tasks "prerender/internal/platform/tasks"
	"prerender/internal/scheduler"
	"prerender/internal/server"
)

func main() {
	cfg := config.Load()
	log.Printf("[prerender] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	taskClient := tasks.New(redisSvc)
	defer taskClient.Close()
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	})

	// Core services
	jobSvc := job.NewService(redisSvc)
	sitemapSvc := sitemap.New()
	snapshotStore := snapshot.NewStore(redisSvc)
	settingsStore := settings.NewStore(redisSvc)
	renderSvc := render.New(cfg)
	prerenderSvc := prerender.NewService(renderSvc, snapshotStore, sitemapSvc, jobSvc, cfg.RenderConcurrency)

	metaFixtures, err := meta.NewFixtureService(cfg.MetaFixtures)
	if err != nil {
		log.Fatalf("failed to load metadata fixtures: %v", err)
	}

	// Worker for queued recache runs
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TaskTypeRecache, prerenderSvc.HandleRecacheTask)
	go func() {
		if err := asynqServer.Start(mux); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// Daily recache using the last accepted configuration
	sched, err := scheduler.New(cfg.RecacheCron, settingsStore, prerenderSvc, taskClient)
	if err != nil {
		log.Fatalf("invalid RECACHE_CRON: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "Prerender Engine",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})
	// Debug screenshots and other render artifacts
	app.Static("/files", cfg.DataDir)

	deps := server.Dependencies{
		Prerender: prerenderSvc,
		Store:     snapshotStore,
		Settings:  settingsStore,
		Sitemap:   sitemapSvc,
		Jobs:      jobSvc,
		Meta:      metaFixtures,
		Redis:     redisSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	go func() {
		time.Sleep(2 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		sched.Stop()
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
