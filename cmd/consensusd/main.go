// Command consensusd is a demonstration binary wiring the consensus engine
// to a leveldb block repository, secp256k1 signature verification, and a
// read-only HTTP query surface. Modeled on kaspad.go's wrapper-struct
// start/stop shape, scaled down to this module's single engine rather than
// kaspad's full node (net adapter, mempool, mining, RPC).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/meridian-dag/consensus/consensus"
	"github.com/meridian-dag/consensus/consensus/blockrepo/leveldbrepo"
	"github.com/meridian-dag/consensus/consensus/cryptosecp256k1"
	"github.com/meridian-dag/consensus/consensus/queryserver"
)

// consensusd wraps the engine and its collaborators, mirroring kaspad.go's
// wrapper struct for the services it owns.
type consensusd struct {
	cfg *config

	engine     *consensus.Engine
	repository *leveldbrepo.Repository
	httpServer *http.Server

	started, shutdown int32
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := consensus.InitLogging(cfg.LogDir, logFilename, 10); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	d, err := newConsensusd(cfg)
	if err != nil {
		log.WithError(err).Error("failed to initialize consensusd")
		os.Exit(1)
	}

	d.start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	if err := d.stop(); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
}

func newConsensusd(cfg *config) (*consensusd, error) {
	repo, err := leveldbrepo.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	engine := consensus.NewEngine(consensus.Config{
		Params:     cfg.netParams(),
		Repository: repo,
		Crypto:     cryptosecp256k1.Crypto{},
		MaxOrphans: cfg.MaxOrphans,
	})

	engine.Subscribe(func(ev consensus.Event) {
		log.WithField("kind", ev.Kind).Debug("consensus event")
	})

	return &consensusd{
		cfg:        cfg,
		engine:     engine,
		repository: repo,
		httpServer: &http.Server{Addr: cfg.HTTPListen, Handler: queryserver.New(engine)},
	}, nil
}

func (d *consensusd) start() {
	if atomic.AddInt32(&d.started, 1) != 1 {
		return
	}

	log.Info("Starting consensusd")

	ctx := context.Background()
	if err := d.engine.Recover(ctx); err != nil {
		log.WithError(err).Warn("recovery from block repository failed")
	}

	go func() {
		if err := d.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("query server stopped unexpectedly")
		}
	}()
}

func (d *consensusd) stop() error {
	if atomic.AddInt32(&d.shutdown, 1) != 1 {
		return nil
	}

	log.Info("Stopping consensusd")

	if err := d.httpServer.Close(); err != nil {
		log.WithError(err).Warn("error closing query server")
	}
	return d.repository.Close()
}
