package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geocoin.ai/internal/config"
	persistlog "geocoin.ai/internal/persistence/log"
	"geocoin.ai/internal/persistence/snapshot"
	"geocoin.ai/internal/persistence/store"
	"geocoin.ai/internal/sim/tuning"
	"geocoin.ai/internal/sim/world"
	"geocoin.ai/internal/transport/admin"
	"geocoin.ai/internal/transport/ws"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.ParseServer(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	tp := cfg.TuningFile()
	tune, err := tuning.Load(tp)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	kv, err := store.Open(cfg.StoreBackend, cfg.StorePath())
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer kv.Close()
	if r, ok := kv.(interface{ Recovered() (string, error) }); ok {
		if moved, cause := r.Recovered(); moved != "" {
			logger.Printf("store %s unreadable (%v); moved to %s, starting empty", cfg.StorePath(), cause, moved)
		}
	}

	// Optional: read-model index backend (never consulted by the session).
	idx, err := openRuntimeIndex(cfg, logger)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	eventLog := persistlog.NewEventLogger(cfg.DataDir)
	defer eventLog.Close()

	hub := ws.NewHub(tune.TileDegrees)
	sess := world.New(world.ConfigFromTuning(tune), world.Deps{
		Store:    kv,
		Renderer: hub,
		Events:   []world.EventLogger{eventLog, idx},
		Logger:   log.New(os.Stdout, "[session] ", log.LstdFlags|log.Lmicroseconds),
	})

	rep, err := sess.Load()
	if err != nil {
		logger.Printf("load: %v", err)
	}
	logger.Printf("session=%s store=%s caches=%d player_coins=%d trail=%d skipped=%d",
		sess.Config().SessionID, cfg.StoreBackend, rep.Caches, rep.PlayerCoins, rep.TrailLen, rep.Skipped)

	ctx, cancel := signalContext()
	defer cancel()

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	sess.SetSnapshotSink(snapCh)
	go runSnapshotWriter(ctx, snapCh, cfg.SnapshotsDir(), cfg.DataDir, idx, logger)

	go func() {
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("session stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsSource{sess: sess, clients: hub.Clients, idx: idx}.handler())

	if cfg.AdminEnabled() {
		// Local-only admin endpoints.
		admin.NewServer(sess, hub, logger).Register(mux)
	} else {
		logger.Printf("admin endpoints disabled (GEOCOIN_ENABLE_ADMIN_HTTP=false)")
	}
	if cfg.PprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(sess, hub, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds)).Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
