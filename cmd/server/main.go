package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	config "github.com/youruser/sonicstencil/configs"
	"github.com/youruser/sonicstencil/internal/api"
	"github.com/youruser/sonicstencil/internal/cards"
	"github.com/youruser/sonicstencil/internal/design"
	"github.com/youruser/sonicstencil/internal/util"
)

const SERVICE_NAME = "sonicstencil"

func init() {
	config.LoadEnv(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_server")
}

func main() {
	cfgPath := os.Getenv("SERVER_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/server.yaml"
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		log.Fatalf("loading server config: %v", err)
	}
	if err := util.EnsureDir(cfg.DataDir); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}

	store, err := design.OpenStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening config store: %v", err)
	}
	defer store.Close()

	srv := api.NewServer(design.NewSession(design.Default()), store, log.StandardLogger())
	srv.Scale = cfg.RenderScale
	srv.Settle = cfg.Settle
	srv.MaxRecords = cfg.MaxRecords
	srv.Jobs = api.NewJobs(cfg.JobTTL)

	// Load cards at startup (best-effort)
	recs, err := cards.LoadRecordsFromDataDir(cfg.DataDir)
	if err != nil {
		log.Warnf("no records loaded at startup: %v", err)
	} else {
		srv.SetRecords(recs)
		log.Infof("loaded %d records from %s", len(recs), cfg.DataDir)
	}

	r := gin.Default()
	api.RegisterRoutes(r, srv)

	httpSrv := &http.Server{Addr: cfg.Listen, Handler: r}
	go func() {
		log.Infof("starting server on %s", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
}
