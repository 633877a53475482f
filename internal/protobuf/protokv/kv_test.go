package protokv_test

import (
	"context"
	"testing"

	. "github.com/saastack/eventing/internal/protobuf/protokv"
	"github.com/saastack/eventing/internal/test"
	"github.com/saastack/eventing/persistence/driver/memory"
	"github.com/saastack/eventing/persistence/kv"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestKeyspace(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) kv.Keyspace {
		ks, err := (&memory.KeyValueStore{}).Open(context.Background(), "<keyspace>")
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { ks.Close() })
		return ks
	}

	t.Run("func Get()", func(t *testing.T) {
		t.Parallel()

		t.Run("it returns false if the key has no value", func(t *testing.T) {
			t.Parallel()

			ks := setup(t)

			_, ok, err := Get[*timestamppb.Timestamp](context.Background(), ks, []byte("<key>"))
			if err != nil {
				t.Fatal(err)
			}
			if ok {
				t.Fatal("did not expect a value")
			}
		})

		t.Run("it returns the value written by Set()", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			ks := setup(t)
			want := &timestamppb.Timestamp{Seconds: 100, Nanos: 5}

			if err := Set(ctx, ks, []byte("<key>"), want); err != nil {
				t.Fatal(err)
			}

			got, ok, err := Get[*timestamppb.Timestamp](ctx, ks, []byte("<key>"))
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatal("expected a value")
			}

			test.Expect(t, "unexpected value", got, want)
		})

		t.Run("it returns an error if the value cannot be unmarshaled", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			ks := setup(t)

			if err := ks.Set(ctx, []byte("<key>"), []byte{0xff}); err != nil {
				t.Fatal(err)
			}

			if _, _, err := Get[*timestamppb.Timestamp](ctx, ks, []byte("<key>")); err == nil {
				t.Fatal("expected an error")
			}
		})
	})

	t.Run("func Range()", func(t *testing.T) {
		t.Parallel()

		t.Run("it visits every value", func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			ks := setup(t)

			for k, s := range map[string]int64{"<a>": 1, "<b>": 2} {
				if err := Set(ctx, ks, []byte(k), &timestamppb.Timestamp{Seconds: s}); err != nil {
					t.Fatal(err)
				}
			}

			got := map[string]int64{}
			if err := Range(
				ctx,
				ks,
				func(_ context.Context, k []byte, v *timestamppb.Timestamp) (bool, error) {
					got[string(k)] = v.GetSeconds()
					return true, nil
				},
			); err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected values", got, map[string]int64{"<a>": 1, "<b>": 2})
		})
	})
}
