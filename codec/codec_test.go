package codec_test

import (
	"errors"
	"testing"

	. "github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/internal/test"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type MemberAdded struct {
	OrganizationID string
	UserID         string
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	newRegistry := func(t *testing.T) *Registry {
		r := &Registry{}
		if err := r.Register(MemberAdded{}, &wrapperspb.StringValue{}); err != nil {
			t.Fatal(err)
		}
		return r
	}

	t.Run("func Marshal()", func(t *testing.T) {
		t.Parallel()

		t.Run("it encodes plain values as JSON", func(t *testing.T) {
			t.Parallel()

			r := newRegistry(t)

			name, contentType, data, err := r.Marshal(MemberAdded{"org-1", "user-1"})
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected type name", name, "MemberAdded")
			test.Expect(t, "unexpected content type", contentType, JSONContentType)
			test.Expect(t, "unexpected data", string(data), `{"OrganizationID":"org-1","UserID":"user-1"}`)
		})

		t.Run("it encodes protocol buffers messages in binary form", func(t *testing.T) {
			t.Parallel()

			r := newRegistry(t)

			name, contentType, _, err := r.Marshal(wrapperspb.String("<value>"))
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected type name", name, "StringValue")
			test.Expect(t, "unexpected content type", contentType, ProtoContentType)
		})

		t.Run("it returns an error if the type is not registered", func(t *testing.T) {
			t.Parallel()

			r := newRegistry(t)

			_, _, _, err := r.Marshal(struct{}{})

			var unknown *UnknownTypeError
			if !errors.As(err, &unknown) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	})

	t.Run("func Unmarshal()", func(t *testing.T) {
		t.Parallel()

		t.Run("it decodes values of the registered type", func(t *testing.T) {
			t.Parallel()

			r := newRegistry(t)

			for _, want := range []any{
				MemberAdded{"<org>", "<user>"},
				wrapperspb.String("<value>"),
			} {
				name, contentType, data, err := r.Marshal(want)
				if err != nil {
					t.Fatal(err)
				}

				got, err := r.Unmarshal(name, contentType, data)
				if err != nil {
					t.Fatal(err)
				}

				test.Expect(t, "unexpected payload", got, want)
			}
		})

		t.Run("it returns an unknown type error for unregistered names", func(t *testing.T) {
			t.Parallel()

			r := newRegistry(t)

			_, err := r.Unmarshal("<unknown>", JSONContentType, []byte(`{}`))

			var unknown *UnknownTypeError
			if !errors.As(err, &unknown) {
				t.Fatalf("unexpected error: %v", err)
			}

			test.Expect(t, "unexpected name", unknown.Name, "<unknown>")
		})

		t.Run("it returns an error for unsupported content types", func(t *testing.T) {
			t.Parallel()

			r := newRegistry(t)

			if _, err := r.Unmarshal("MemberAdded", "text/plain", nil); err == nil {
				t.Fatal("expected an error")
			}
		})
	})

	t.Run("func RegisterAs()", func(t *testing.T) {
		t.Parallel()

		t.Run("it rejects a name that is already registered to another type", func(t *testing.T) {
			t.Parallel()

			r := newRegistry(t)

			if err := r.RegisterAs("MemberAdded", struct{}{}); err == nil {
				t.Fatal("expected an error")
			}
		})

		t.Run("it allows the same registration to be repeated", func(t *testing.T) {
			t.Parallel()

			r := newRegistry(t)

			if err := r.Register(MemberAdded{}); err != nil {
				t.Fatal(err)
			}
		})
	})
}
