// Command example runs the eventing engine with an "organization" aggregate
// whose membership changes are published as integration events.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dogmatiq/ferrite"
	"github.com/saastack/eventing"
	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/broker/memory"
	"github.com/saastack/eventing/notification"
	"github.com/saastack/eventing/repository"
	"golang.org/x/sync/errgroup"
)

func main() {
	ferrite.Init(
		ferrite.WithRegistry(eventing.FerriteRegistry),
	)

	logger := slog.New(
		slog.NewJSONHandler(
			os.Stdout,
			&slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		),
	)

	options := []eventing.EngineOption{
		eventing.WithOptionsFromEnvironment(),
		eventing.WithLogger(logger),
		eventing.WithEventTypes(
			OrganizationCreated{},
			MemberAdded{},
			MemberRemoved{},
		),
		eventing.WithConsumer(
			notification.ConsumerFunc(
				func(ctx context.Context, ev aggregate.Event) error {
					logger.InfoContext(
						ctx,
						"domain event consumed",
						slog.String("stream", ev.StreamName),
						slog.String("type", ev.EventType),
						slog.Uint64("version", ev.Version),
					)
					return nil
				},
			),
		),
		eventing.WithTranslator(membershipTranslator{}),
		eventing.WithSnapshotEvery(10),
	}

	if os.Getenv("EVENTING_BROKER_DSN") == "" {
		b := &memory.Broker{}
		published := make(chan notification.IntegrationEvent, 10)
		b.Subscribe(published)

		go func() {
			for ev := range published {
				logger.Info(
					"integration event published",
					slog.String("topic", ev.Topic()),
					slog.String("event_id", ev.EventID()),
				)
			}
		}()

		options = append(options, eventing.WithMessageBroker(b))
	}

	e := eventing.New(options...)
	defer e.Close()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	repo := eventing.NewRepository(e, organizationType, newOrganization)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.Run(ctx)
	})
	g.Go(func() error {
		return demo(ctx, logger, repo)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("example stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func demo(
	ctx context.Context,
	logger *slog.Logger,
	repo *repository.Repository[*organization],
) error {
	const id = "acme"

	org, err := repo.Load(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		org = newOrganization(id)
		err = org.Raise(OrganizationCreated{Name: "Acme Corporation"})
	}
	if err != nil {
		return err
	}

	for _, userID := range []string{"alice", "bob"} {
		if err := org.AddMember(userID); err != nil {
			return err
		}
	}

	if err := org.RemoveMember("bob"); err != nil {
		return err
	}

	if err := repo.Save(ctx, org); err != nil {
		return err
	}

	logger.InfoContext(
		ctx,
		"organization saved",
		slog.String("id", org.ID()),
		slog.Uint64("version", org.Version()),
		slog.Any("members", org.Members()),
	)

	return nil
}
