// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"fmt"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/countervm/config"
	"github.com/ava-labs/countervm/host"
	"github.com/ava-labs/countervm/pebble"
	"github.com/ava-labs/countervm/storage"

	ctrace "github.com/ava-labs/countervm/trace"
)

const (
	stateNamespace = "state"
	keysNamespace  = "keys"
	hostNamespace  = "host"
)

// Handler runs an embedded host over the configured data directory. Keys and
// CLI defaults live in a database separate from application state.
type Handler struct {
	config *config.Config
	log    logging.Logger

	gatherer metrics.MultiGatherer
	tracer   trace.Tracer
	stateDB  *pebble.Database
	db       *pebble.Database
	host     *host.Host
}

func New(c *config.Config, log logging.Logger) (*Handler, error) {
	gatherer := metrics.NewPrefixGatherer()
	tracer, err := ctrace.New(c.GetTraceConfig())
	if err != nil {
		return nil, err
	}
	stateDB, err := storage.New(c.GetPebbleConfig(), c.GetDataDir(), stateNamespace, gatherer)
	if err != nil {
		_ = tracer.Close()
		return nil, err
	}
	db, err := storage.New(c.GetPebbleConfig(), c.GetDataDir(), keysNamespace, gatherer)
	if err != nil {
		_ = stateDB.Close()
		_ = tracer.Close()
		return nil, err
	}
	registry := prometheus.NewRegistry()
	h, err := host.New(log, stateDB, tracer, registry, c.GetHostConfig())
	if err == nil {
		err = gatherer.Register(hostNamespace, registry)
	}
	if err != nil {
		_ = db.Close()
		_ = stateDB.Close()
		_ = tracer.Close()
		return nil, err
	}
	return &Handler{
		config:   c,
		log:      log,
		gatherer: gatherer,
		tracer:   tracer,
		stateDB:  stateDB,
		db:       db,
		host:     h,
	}, nil
}

func (h *Handler) Host() *host.Host { return h.host }

func (h *Handler) Gatherer() prometheus.Gatherer { return h.gatherer }

func (h *Handler) Close() error {
	errs := wrappers.Errs{}
	errs.Add(
		h.db.Close(),
		h.stateDB.Close(),
		h.tracer.Close(),
	)
	if errs.Errored() {
		return fmt.Errorf("unable to close handler: %w", errs.Err)
	}
	return nil
}
