package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// RunTests runs the conformance tests that every [Store] implementation must
// pass.
func RunTests(t *testing.T, newStore func(t *testing.T) Store) {
	// setup opens a keyspace with a unique name and seeds it with pairs.
	setup := func(t *testing.T, pairs ...string) (context.Context, Keyspace) {
		t.Helper()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		t.Cleanup(cancel)

		ks, err := newStore(t).Open(ctx, uuid.NewString())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { ks.Close() })

		for i := 0; i < len(pairs); i += 2 {
			if err := ks.Set(ctx, []byte(pairs[i]), []byte(pairs[i+1])); err != nil {
				t.Fatal(err)
			}
		}

		return ctx, ks
	}

	expectValue := func(t *testing.T, ctx context.Context, ks Keyspace, k, want string) {
		t.Helper()

		got, err := ks.Get(ctx, []byte(k))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, []byte(want)) {
			t.Fatalf("unexpected value for %q: want %q, got %q", k, want, got)
		}

		ok, err := ks.Has(ctx, []byte(k))
		if err != nil {
			t.Fatal(err)
		}
		if ok != (want != "") {
			t.Fatalf("unexpected presence of %q: got %t", k, ok)
		}
	}

	t.Run("type Store", func(t *testing.T) {
		t.Run("func Open()", func(t *testing.T) {
			t.Run("it isolates keyspaces that have different names", func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()

				store := newStore(t)
				prefix := uuid.NewString()

				// The names share prefixes to catch drivers that match
				// keyspaces by prefix.
				names := []string{prefix + ".queue", prefix + ".snapshots", prefix + ".queue.checkpoints"}

				for i, name := range names {
					ks, err := store.Open(ctx, name)
					if err != nil {
						t.Fatal(err)
					}
					err = ks.Set(ctx, []byte("<key>"), []byte(fmt.Sprintf("<value-%d>", i)))
					ks.Close()
					if err != nil {
						t.Fatal(err)
					}
				}

				for i, name := range names {
					ks, err := store.Open(ctx, name)
					if err != nil {
						t.Fatal(err)
					}
					expectValue(t, ctx, ks, "<key>", fmt.Sprintf("<value-%d>", i))
					ks.Close()
				}
			})

			t.Run("it shares state between handles to the same keyspace", func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()

				store := newStore(t)
				name := uuid.NewString()

				writer, err := store.Open(ctx, name)
				if err != nil {
					t.Fatal(err)
				}
				defer writer.Close()

				reader, err := store.Open(ctx, name)
				if err != nil {
					t.Fatal(err)
				}
				defer reader.Close()

				if err := writer.Set(ctx, []byte("<key>"), []byte("<value>")); err != nil {
					t.Fatal(err)
				}

				expectValue(t, ctx, reader, "<key>", "<value>")
			})
		})
	})

	t.Run("type Keyspace", func(t *testing.T) {
		t.Run("func Get() and Has()", func(t *testing.T) {
			t.Run("it reports a missing key as an empty value", func(t *testing.T) {
				ctx, ks := setup(t)
				expectValue(t, ctx, ks, "<missing>", "")
			})

			t.Run("it returns the most recent value", func(t *testing.T) {
				ctx, ks := setup(t, "<key>", "<first>", "<key>", "<second>", "<other>", "<other-value>")
				expectValue(t, ctx, ks, "<key>", "<second>")
				expectValue(t, ctx, ks, "<other>", "<other-value>")
			})
		})

		t.Run("func Set()", func(t *testing.T) {
			t.Run("it deletes the key when the value is empty", func(t *testing.T) {
				ctx, ks := setup(t, "<key>", "<value>", "<key>", "")
				expectValue(t, ctx, ks, "<key>", "")
			})

			t.Run("it allows a deleted key to be set again", func(t *testing.T) {
				ctx, ks := setup(t, "<key>", "<first>", "<key>", "", "<key>", "<second>")
				expectValue(t, ctx, ks, "<key>", "<second>")
			})

			t.Run("it does not fail when deleting a missing key", func(t *testing.T) {
				ctx, ks := setup(t)
				if err := ks.Set(ctx, []byte("<missing>"), nil); err != nil {
					t.Fatal(err)
				}
			})
		})

		t.Run("func Range()", func(t *testing.T) {
			t.Run("it visits every pair exactly once", func(t *testing.T) {
				ctx, ks := setup(
					t,
					"<a>", "<value-a>",
					"<b>", "<value-b>",
					"<c>", "<value-c>",
					"<b>", "",
				)

				got := map[string]string{}
				if err := ks.Range(
					ctx,
					func(_ context.Context, k, v []byte) (bool, error) {
						if _, ok := got[string(k)]; ok {
							t.Fatalf("key %q visited more than once", k)
						}
						got[string(k)] = string(v)
						return true, nil
					},
				); err != nil {
					t.Fatal(err)
				}

				want := map[string]string{
					"<a>": "<value-a>",
					"<c>": "<value-c>",
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatal(diff)
				}
			})

			t.Run("it stops when the function returns false", func(t *testing.T) {
				ctx, ks := setup(t, "<a>", "<value-a>", "<b>", "<value-b>")

				calls := 0
				if err := ks.Range(
					ctx,
					func(context.Context, []byte, []byte) (bool, error) {
						calls++
						return false, nil
					},
				); err != nil {
					t.Fatal(err)
				}

				if calls != 1 {
					t.Fatalf("expected one call, got %d", calls)
				}
			})

			t.Run("it returns the function's error", func(t *testing.T) {
				ctx, ks := setup(t, "<a>", "<value-a>")

				want := errors.New("<error>")
				err := ks.Range(
					ctx,
					func(context.Context, []byte, []byte) (bool, error) {
						return true, want
					},
				)
				if !errors.Is(err, want) {
					t.Fatalf("unexpected error: %v", err)
				}
			})

			t.Run("it does not visit the pairs of other keyspaces", func(t *testing.T) {
				ctx, ks := setup(t)

				other, err := newStore(t).Open(ctx, uuid.NewString())
				if err != nil {
					t.Fatal(err)
				}
				defer other.Close()

				if err := other.Set(ctx, []byte("<key>"), []byte("<value>")); err != nil {
					t.Fatal(err)
				}

				if err := ks.Range(
					ctx,
					func(_ context.Context, k, _ []byte) (bool, error) {
						t.Fatalf("unexpected key %q", k)
						return false, nil
					},
				); err != nil {
					t.Fatal(err)
				}
			})
		})
	})
}
