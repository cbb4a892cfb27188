package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mindspace-health/mindspace-core/internal/auth"
	"github.com/mindspace-health/mindspace-core/internal/config"
	"github.com/mindspace-health/mindspace-core/internal/db"
	"github.com/mindspace-health/mindspace-core/internal/server"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := server.NewSQLStore(dbh, cfg.DBDriver)
	events := server.NewEventLog(dbh)

	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, store); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	authSvc := auth.NewService(cfg.AuthSecret)
	r := server.NewRouter(authSvc, store, events, cfg.CORSOrigins)

	log.Printf("mindspaced listening on %s (driver=%s)", cfg.HTTPAddr, cfg.DBDriver)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
