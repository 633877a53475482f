package main

import (
	"errors"
	"fmt"

	"github.com/saastack/eventing/aggregate"
	"golang.org/x/exp/slices"
)

const organizationType = "organization"

type (
	OrganizationCreated struct {
		Name string `json:"name"`
	}

	MemberAdded struct {
		UserID string `json:"user_id"`
	}

	MemberRemoved struct {
		UserID string `json:"user_id"`
	}
)

type organization struct {
	aggregate.Root

	name    string
	members []string
}

func newOrganization(id string) *organization {
	o := &organization{}
	o.Init(o, organizationType, id)
	return o
}

func (o *organization) Members() []string {
	return slices.Clone(o.members)
}

// AddMember adds a user to the organization. It is a no-op if the user is
// already a member.
func (o *organization) AddMember(userID string) error {
	if userID == "" {
		return errors.New("user ID must not be empty")
	}

	if slices.Contains(o.members, userID) {
		return nil
	}

	return o.Raise(MemberAdded{userID})
}

// RemoveMember removes a user from the organization.
func (o *organization) RemoveMember(userID string) error {
	if !slices.Contains(o.members, userID) {
		return fmt.Errorf("%s is not a member of %s", userID, o.ID())
	}

	return o.Raise(MemberRemoved{userID})
}

func (o *organization) ApplyEvent(payload any) error {
	switch p := payload.(type) {
	case OrganizationCreated:
		o.name = p.Name
	case MemberAdded:
		o.members = append(o.members, p.UserID)
	case MemberRemoved:
		if i := slices.Index(o.members, p.UserID); i >= 0 {
			o.members = slices.Delete(o.members, i, i+1)
		}
	default:
		return fmt.Errorf("unexpected payload: %T", payload)
	}
	return nil
}

func (o *organization) Dehydrate() (map[string]any, error) {
	return map[string]any{
		"name":    o.name,
		"members": o.members,
	}, nil
}

func (o *organization) Rehydrate(p aggregate.Properties) error {
	if _, err := p.Get("name", &o.name); err != nil {
		return err
	}
	_, err := p.Get("members", &o.members)
	return err
}
