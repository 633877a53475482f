package repository_test

import (
	"errors"
	"fmt"

	"github.com/saastack/eventing/aggregate"
	"golang.org/x/exp/slices"
)

type (
	Created     struct{ Name string }
	MemberAdded struct{ UserID string }
)

var errDuplicateMember = errors.New("user is already a member")

type organization struct {
	aggregate.Root

	Name    string
	Members []string
}

func newOrganization(id string) *organization {
	o := &organization{}
	o.Init(o, "organization", id)
	return o
}

func (o *organization) ApplyEvent(payload any) error {
	switch p := payload.(type) {
	case Created:
		o.Name = p.Name
	case MemberAdded:
		if slices.Contains(o.Members, p.UserID) {
			return errDuplicateMember
		}
		o.Members = append(o.Members, p.UserID)
	default:
		return fmt.Errorf("unexpected payload: %T", payload)
	}
	return nil
}

func (o *organization) Dehydrate() (map[string]any, error) {
	return map[string]any{
		"name":    o.Name,
		"members": o.Members,
	}, nil
}

func (o *organization) Rehydrate(p aggregate.Properties) error {
	if _, err := p.Get("name", &o.Name); err != nil {
		return err
	}
	_, err := p.Get("members", &o.Members)
	return err
}

// plain is an aggregate that does not support snapshots.
type plain struct {
	aggregate.Root
	Names []string
}

func newPlain(id string) *plain {
	p := &plain{}
	p.Init(p, "plain", id)
	return p
}

func (p *plain) ApplyEvent(payload any) error {
	if c, ok := payload.(Created); ok {
		p.Names = append(p.Names, c.Name)
		return nil
	}
	return fmt.Errorf("unexpected payload: %T", payload)
}
