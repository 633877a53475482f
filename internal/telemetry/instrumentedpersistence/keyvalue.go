package instrumentedpersistence

import (
	"context"

	"github.com/saastack/eventing/internal/telemetry"
	"github.com/saastack/eventing/persistence/kv"
)

// KeyValueStore is a decorator that adds instrumentation to a [kv.Store].
type KeyValueStore struct {
	Next      kv.Store
	Telemetry *telemetry.Provider
}

// Open returns the keyspace with the given name.
func (s *KeyValueStore) Open(ctx context.Context, name string) (kv.Keyspace, error) {
	r := newRecorder(s.Telemetry, "keyspace", s.Next, telemetry.String("name", name))

	ctx, span := r.StartSpan(ctx, "keyspace.open")
	defer span.End()

	next, err := s.Next.Open(ctx, name)
	if err != nil {
		span.Error("could not open keyspace", err)
		return nil, err
	}

	ks := &keyspace{
		next:        next,
		recorder:    r,
		instruments: newInstruments(r, "keyspace", "pair"),
	}

	ks.open.Add(ctx, 1)
	span.Debug("opened keyspace")

	return ks, nil
}

type keyspace struct {
	instruments

	next     kv.Keyspace
	recorder *telemetry.Recorder
}

func (ks *keyspace) Get(ctx context.Context, k []byte) ([]byte, error) {
	ctx, span := ks.recorder.StartSpan(ctx, "keyspace.get", bytesAttr("key", k))
	defer span.End()

	v, err := ks.next.Get(ctx, k)
	if err != nil {
		span.Error("could not fetch value", err)
		return nil, err
	}

	span.SetAttributes(
		bytesAttr("value", v),
		telemetry.Int("value_size", len(v)),
	)
	ks.transfer(ctx, len(k)+len(v), telemetry.ReadDirection)
	span.Debug("fetched value")

	return v, nil
}

func (ks *keyspace) Has(ctx context.Context, k []byte) (bool, error) {
	ctx, span := ks.recorder.StartSpan(ctx, "keyspace.has", bytesAttr("key", k))
	defer span.End()

	ok, err := ks.next.Has(ctx, k)
	if err != nil {
		span.Error("could not check for presence of key", err)
		return false, err
	}

	span.SetAttributes(telemetry.Bool("key_present", ok))
	ks.transfer(ctx, len(k), telemetry.ReadDirection)
	span.Debug("checked for presence of key")

	return ok, nil
}

func (ks *keyspace) Set(ctx context.Context, k, v []byte) error {
	ctx, span := ks.recorder.StartSpan(
		ctx,
		"keyspace.set",
		bytesAttr("key", k),
		bytesAttr("value", v),
		telemetry.Int("value_size", len(v)),
	)
	defer span.End()

	if err := ks.next.Set(ctx, k, v); err != nil {
		span.Error("could not set key/value pair", err)
		return err
	}

	ks.transfer(ctx, len(k)+len(v), telemetry.WriteDirection)

	if len(v) == 0 {
		span.Debug("deleted key/value pair")
	} else {
		span.Debug("set key/value pair")
	}

	return nil
}

func (ks *keyspace) Range(ctx context.Context, fn kv.RangeFunc) error {
	ctx, span := ks.recorder.StartSpan(ctx, "keyspace.range")
	defer span.End()

	count, stopped := 0, false

	err := ks.next.Range(
		ctx,
		func(ctx context.Context, k, v []byte) (bool, error) {
			count++
			ks.transfer(ctx, len(k)+len(v), telemetry.ReadDirection)

			ok, err := fn(ctx, k, v)
			stopped = !ok
			return ok, err
		},
	)

	span.SetAttributes(
		telemetry.Int("pairs_read", count),
		telemetry.Bool("reached_end", !stopped && err == nil),
	)

	if err != nil {
		span.Error("could not read key/value pairs", err)
		return err
	}

	span.Debug("read key/value pairs")
	return nil
}

func (ks *keyspace) Close() error {
	var closeNext func() error
	if ks.next != nil {
		closeNext = ks.next.Close
		ks.next = nil
	}
	return closeHandle(ks.recorder, ks.instruments, "keyspace", closeNext)
}
