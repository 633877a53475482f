package main

import (
	"context"

	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/notification"
)

// OrganizationMemberAdded is the integration event published when a user
// joins an organization.
type OrganizationMemberAdded struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
}

func (e OrganizationMemberAdded) Topic() string   { return "organization.member-added" }
func (e OrganizationMemberAdded) EventID() string { return e.ID }

type membershipTranslator struct{}

func (membershipTranslator) AggregateType() string {
	return organizationType
}

func (membershipTranslator) Translate(
	_ context.Context,
	ev aggregate.Event,
) (notification.IntegrationEvent, bool, error) {
	added, ok := ev.Payload.(MemberAdded)
	if !ok {
		return nil, false, nil
	}

	return OrganizationMemberAdded{
		ID:             ev.ID.String(),
		OrganizationID: ev.AggregateID,
		UserID:         added.UserID,
	}, true, nil
}
