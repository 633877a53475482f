package journal

import (
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
	// setup opens a journal at a unique path, appends the given records and
	// then truncates it so that it begins at the given position.
	setup := func(t *testing.T, truncateTo Position, records ...string) (context.Context, Journal) {
		t.Helper()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		t.Cleanup(cancel)

		j, err := newStore(t).Open(ctx, "stream", uuid.NewString())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { j.Close() })

		for i, rec := range records {
			if err := j.Append(ctx, Position(i), []byte(rec)); err != nil {
				t.Fatal(err)
			}
		}

		if truncateTo > 0 {
			if err := j.Truncate(ctx, truncateTo); err != nil {
				t.Fatal(err)
			}
		}

		return ctx, j
	}

	expectBounds := func(t *testing.T, ctx context.Context, j Journal, begin, end Position) {
		t.Helper()

		b, e, err := j.Bounds(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if b != begin || e != end {
			t.Fatalf("unexpected bounds: want [%d, %d), got [%d, %d)", begin, end, b, e)
		}
	}

	expectRecord := func(t *testing.T, ctx context.Context, j Journal, pos Position, want string) {
		t.Helper()

		rec, ok, err := j.Get(ctx, pos)
		if err != nil {
			t.Fatal(err)
		}
		if ok != (want != "") {
			t.Fatalf("unexpected presence of record at position %d: got %t", pos, ok)
		}
		if string(rec) != want {
			t.Fatalf("unexpected record at position %d: want %q, got %q", pos, want, rec)
		}
	}

	collect := func(t *testing.T, ctx context.Context, j Journal, begin Position, limit int) ([]string, error) {
		t.Helper()

		var got []string
		err := j.Range(
			ctx,
			begin,
			func(_ context.Context, pos Position, rec []byte) (bool, error) {
				got = append(got, fmt.Sprintf("%d:%s", pos, rec))
				return len(got) != limit, nil
			},
		)

		return got, err
	}

	t.Run("type Store", func(t *testing.T) {
		t.Run("func Open()", func(t *testing.T) {
			t.Run("it keeps journals with similar paths separate", func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()

				store := newStore(t)
				prefix := uuid.NewString()

				paths := [][]string{
					{prefix, "organization_abc"},
					{prefix, "organization", "abc"},
					{prefix, "organization_ab", "c"},
					{prefix, "organization/abc"},
					{prefix, "organization/", "abc"},
					{prefix, "organization", "/abc"},
				}

				for i, path := range paths {
					j, err := store.Open(ctx, path...)
					if err != nil {
						t.Fatal(err)
					}

					err = j.Append(ctx, 0, []byte(fmt.Sprintf("<record-%d>", i)))
					if err != nil {
						j.Close()
						t.Fatalf("append to %q: %s", path, err)
					}

					expectRecord(t, ctx, j, 0, fmt.Sprintf("<record-%d>", i))
					j.Close()
				}
			})

			t.Run("it shares records between handles to the same journal", func(t *testing.T) {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()

				store := newStore(t)
				path := uuid.NewString()

				writer, err := store.Open(ctx, path)
				if err != nil {
					t.Fatal(err)
				}
				defer writer.Close()

				reader, err := store.Open(ctx, path)
				if err != nil {
					t.Fatal(err)
				}
				defer reader.Close()

				if err := writer.Append(ctx, 0, []byte("<record>")); err != nil {
					t.Fatal(err)
				}

				expectRecord(t, ctx, reader, 0, "<record>")
				expectBounds(t, ctx, reader, 0, 1)
			})
		})
	})

	t.Run("type Journal", func(t *testing.T) {
		t.Run("func Bounds()", func(t *testing.T) {
			t.Run("it returns [0, 0) when the journal is empty", func(t *testing.T) {
				ctx, j := setup(t, 0)
				expectBounds(t, ctx, j, 0, 0)
			})

			t.Run("it excludes truncated records", func(t *testing.T) {
				ctx, j := setup(t, 2, "<a>", "<b>", "<c>", "<d>")
				expectBounds(t, ctx, j, 2, 4)
			})

			t.Run("it is empty at the end position once every record is truncated", func(t *testing.T) {
				ctx, j := setup(t, 2, "<a>", "<b>")

				_, end, err := j.Bounds(ctx)
				if err != nil {
					t.Fatal(err)
				}

				// Some drivers only retain the end position while at least
				// one record remains, so only the end is checked here.
				if end != 0 && end != 2 {
					t.Fatalf("unexpected end position: %d", end)
				}
			})
		})

		t.Run("func Get()", func(t *testing.T) {
			t.Run("it returns the record at the given position", func(t *testing.T) {
				ctx, j := setup(t, 0, "<a>", "<b>", "<c>")
				expectRecord(t, ctx, j, 0, "<a>")
				expectRecord(t, ctx, j, 1, "<b>")
				expectRecord(t, ctx, j, 2, "<c>")
			})

			t.Run("it reports positions that have not been written as missing", func(t *testing.T) {
				ctx, j := setup(t, 0, "<a>")
				expectRecord(t, ctx, j, 1, "")
				expectRecord(t, ctx, j, 100, "")
			})

			t.Run("it reports truncated records as missing", func(t *testing.T) {
				ctx, j := setup(t, 2, "<a>", "<b>", "<c>")
				expectRecord(t, ctx, j, 0, "")
				expectRecord(t, ctx, j, 1, "")
				expectRecord(t, ctx, j, 2, "<c>")
			})
		})

		t.Run("func Range()", func(t *testing.T) {
			t.Run("it visits each record in order from the given position", func(t *testing.T) {
				ctx, j := setup(t, 0, "<a>", "<b>", "<c>", "<d>")

				got, err := collect(t, ctx, j, 1, -1)
				if err != nil {
					t.Fatal(err)
				}

				if diff := cmp.Diff([]string{"1:<b>", "2:<c>", "3:<d>"}, got); diff != "" {
					t.Fatal(diff)
				}
			})

			t.Run("it stops when the function returns false", func(t *testing.T) {
				ctx, j := setup(t, 0, "<a>", "<b>", "<c>")

				got, err := collect(t, ctx, j, 0, 2)
				if err != nil {
					t.Fatal(err)
				}

				if diff := cmp.Diff([]string{"0:<a>", "1:<b>"}, got); diff != "" {
					t.Fatal(diff)
				}
			})

			t.Run("it returns the function's error", func(t *testing.T) {
				ctx, j := setup(t, 0, "<a>")

				want := errors.New("<error>")
				err := j.Range(
					ctx,
					0,
					func(context.Context, Position, []byte) (bool, error) {
						return true, want
					},
				)
				if !errors.Is(err, want) {
					t.Fatalf("unexpected error: %v", err)
				}
			})

			t.Run("it does nothing when starting at the end of the journal", func(t *testing.T) {
				ctx, j := setup(t, 0, "<a>")

				got, err := collect(t, ctx, j, 1, -1)
				if err != nil {
					t.Fatal(err)
				}
				if len(got) != 0 {
					t.Fatalf("unexpected records: %v", got)
				}
			})

			t.Run("it returns an error when starting at a truncated record", func(t *testing.T) {
				ctx, j := setup(t, 2, "<a>", "<b>", "<c>")

				if _, err := collect(t, ctx, j, 1, -1); err == nil {
					t.Fatal("expected an error")
				}
			})
		})

		t.Run("func Append()", func(t *testing.T) {
			t.Run("it returns ErrConflict if the position is occupied", func(t *testing.T) {
				ctx, j := setup(t, 0, "<a>", "<b>")

				for _, pos := range []Position{0, 1} {
					err := j.Append(ctx, pos, []byte("<conflict>"))
					if !errors.Is(err, ErrConflict) {
						t.Fatalf("unexpected error appending at position %d: %v", pos, err)
					}
				}

				expectRecord(t, ctx, j, 0, "<a>")
				expectRecord(t, ctx, j, 1, "<b>")
			})

			t.Run("it allows exactly one of several concurrent writers to win", func(t *testing.T) {
				ctx, j := setup(t, 0)

				const writers = 5
				results := make(chan error, writers)

				for i := 0; i < writers; i++ {
					go func(i int) {
						results <- j.Append(ctx, 0, []byte(fmt.Sprintf("<writer-%d>", i)))
					}(i)
				}

				wins := 0
				for i := 0; i < writers; i++ {
					switch err := <-results; {
					case err == nil:
						wins++
					case !errors.Is(err, ErrConflict):
						t.Fatal(err)
					}
				}

				if wins != 1 {
					t.Fatalf("expected exactly one successful append, got %d", wins)
				}

				expectBounds(t, ctx, j, 0, 1)
			})
		})

		t.Run("func Truncate()", func(t *testing.T) {
			t.Run("it keeps the record at the given position", func(t *testing.T) {
				ctx, j := setup(t, 0, "<a>", "<b>", "<c>")

				if err := j.Truncate(ctx, 1); err != nil {
					t.Fatal(err)
				}

				expectBounds(t, ctx, j, 1, 3)
				expectRecord(t, ctx, j, 1, "<b>")
			})

			t.Run("it does nothing when truncating to an earlier position", func(t *testing.T) {
				ctx, j := setup(t, 2, "<a>", "<b>", "<c>")

				if err := j.Truncate(ctx, 1); err != nil {
					t.Fatal(err)
				}

				expectBounds(t, ctx, j, 2, 3)
			})

			t.Run("it allows appending after truncation", func(t *testing.T) {
				ctx, j := setup(t, 2, "<a>", "<b>", "<c>")

				if err := j.Append(ctx, 3, []byte("<d>")); err != nil {
					t.Fatal(err)
				}

				expectBounds(t, ctx, j, 2, 4)
				expectRecord(t, ctx, j, 3, "<d>")
			})
		})
	})
}
