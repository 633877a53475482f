// Package eventing hosts event-sourced aggregates and notifies consumers and
// message brokers of the events they raise.
package eventing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/eventstore"
	"github.com/saastack/eventing/internal/cluster"
	"github.com/saastack/eventing/internal/engineconfig"
	"github.com/saastack/eventing/internal/signaling"
	"github.com/saastack/eventing/notification"
	"github.com/saastack/eventing/queue"
	"github.com/saastack/eventing/repository"
	"github.com/saastack/eventing/snapshot"
	"golang.org/x/sync/errgroup"
)

// Engine provides repositories for event-sourced aggregates, and delivers the
// events they persist to consumers and message brokers.
type Engine struct {
	config     engineconfig.Config
	events     *eventstore.JournalStore
	snapshots  snapshot.Store
	notifier   *notification.Notifier
	supervisor *queue.Supervisor

	shutdown  signaling.Latch
	closeOnce sync.Once

	m       sync.Mutex
	running chan struct{}
}

// ErrClosed is returned by [Engine.Run] if the engine has already been closed.
var ErrClosed = errors.New("engine is closed")

// errShutdown is returned internally when the engine is closed while running.
var errShutdown = errors.New("engine is shutting down")

// New returns a new engine.
func New(options ...EngineOption) *Engine {
	cfg := engineconfig.New(options)

	e := &Engine{
		config: cfg,
		events: &eventstore.JournalStore{
			Journals:  cfg.Persistence.Journals,
			Codec:     cfg.Codec,
			Migrator:  cfg.Migrator,
			Telemetry: cfg.Telemetry,
		},
		snapshots: &snapshot.KeyValueStore{
			Keyspaces: cfg.Persistence.Keyspaces,
		},
	}

	consumers := notification.NewSyncRelay(cfg.Notification.Consumers...)
	var relay notification.ConsumerRelay = consumers

	if cfg.Relay.Async {
		q := &queue.Queue{
			Journals:   cfg.Persistence.Journals,
			Codec:      cfg.Codec,
			Partitions: cfg.Relay.Partitions,
			Telemetry:  cfg.Telemetry,
		}

		relay = &notification.QueueRelay{Queue: q}

		e.supervisor = &queue.Supervisor{
			Queue:     q,
			Keyspaces: cfg.Persistence.Keyspaces,
			Consumer:  consumers,
			Telemetry: cfg.Telemetry,
		}
	}

	n, err := notification.NewNotifier(
		relay,
		cfg.Notification.Broker,
		cfg.Notification.Translators...,
	)
	if err != nil {
		cfg.Close()
		panic(err)
	}

	n.Telemetry = cfg.Telemetry
	e.notifier = n

	return e
}

// NewRepository returns a repository for aggregates of the given type.
//
// factory returns a new, empty aggregate with the given ID. It must return
// aggregates of type aggregateType.
func NewRepository[T aggregate.Aggregate](
	e *Engine,
	aggregateType string,
	factory func(id string) T,
) *repository.Repository[T] {
	if aggregateType == "" {
		panic("aggregate type must not be empty")
	}
	if factory == nil {
		panic("factory must not be nil")
	}

	return &repository.Repository[T]{
		Events:        e.events,
		Notifier:      e.notifier,
		Snapshots:     e.snapshots,
		SnapshotEvery: e.config.SnapshotEvery,
		New: func(id string) T {
			agg := factory(id)
			if t := agg.Type(); t != aggregateType {
				panic(fmt.Sprintf(
					"factory for %q aggregates returned an aggregate of type %q",
					aggregateType,
					t,
				))
			}
			return agg
		},
		Telemetry: e.config.Telemetry,
	}
}

// Run delivers domain events to consumers until ctx is canceled or an error
// occurs.
//
// When the asynchronous relay is enabled, the node joins a cluster of engines
// that share the same key/value store, and the partitions of the relay queue
// are divided among the cluster's members.
//
// Repositories may be used without calling [Engine.Run]. If the engine is
// configured with [WithAsyncRelay] the events they save are queued until the
// engine is running.
func (e *Engine) Run(ctx context.Context) error {
	if e.shutdown.IsSet() {
		return ErrClosed
	}

	e.m.Lock()
	if e.running != nil {
		e.m.Unlock()
		panic("engine is already running")
	}
	done := make(chan struct{})
	e.running = done
	e.m.Unlock()

	defer func() {
		e.m.Lock()
		e.running = nil
		e.m.Unlock()
		close(done)
	}()

	logger := e.config.Telemetry.Logger
	logger.InfoContext(
		ctx,
		"eventing engine started",
		slog.String("node_id", e.config.NodeID.String()),
		slog.Bool("async_relay", e.supervisor != nil),
	)

	g, ctx := errgroup.WithContext(ctx)

	if e.supervisor != nil {
		r := &relayRunner{
			Node:       cluster.Node{ID: e.config.NodeID},
			Keyspaces:  e.config.Persistence.Keyspaces,
			Supervisor: e.supervisor,
			Logger:     logger,
		}

		g.Go(func() error {
			return r.Run(ctx)
		})
	}

	g.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.shutdown.Signaled():
			return errShutdown
		}
	})

	err := g.Wait()
	if err == errShutdown {
		err = nil
	}

	logger.Info(
		"eventing engine stopped",
		slog.String("node_id", e.config.NodeID.String()),
		slog.Any("error", err),
	)

	return err
}

// Close stops the engine if it is running, then releases the resources opened
// on behalf of the engine, such as database and broker connections described
// in the environment.
func (e *Engine) Close() error {
	e.shutdown.Signal()

	e.m.Lock()
	done := e.running
	e.m.Unlock()

	if done != nil {
		<-done
	}

	e.closeOnce.Do(e.config.Close)

	return nil
}
