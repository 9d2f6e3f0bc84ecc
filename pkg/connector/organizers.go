package connector

import (
	"context"
	"fmt"
	"strings"

	v2 "github.com/conductorone/baton-sdk/pb/c1/connector/v2"
	"github.com/conductorone/baton-sdk/pkg/annotations"
	"github.com/conductorone/baton-sdk/pkg/pagination"
	rs "github.com/conductorone/baton-sdk/pkg/types/resource"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/conductorone/baton-gotomeeting/pkg/gotomeeting"
)

const organizerStatusActive = "active"

type organizerBuilder struct {
	groups       *gotomeeting.GroupService
	resourceType *v2.ResourceType
}

func organizerResource(organizer *gotomeeting.Organizer, parentID *v2.ResourceId) (*v2.Resource, error) {
	key := formatKey(organizer.OrganizerKey)
	profile := map[string]interface{}{
		"organizer_key": key,
		"email":         organizer.Email,
		"firstName":     organizer.FirstName,
		"lastName":      organizer.LastName,
		"product_type":  organizer.ProductType,
	}

	userStatus := v2.UserTrait_Status_STATUS_DISABLED
	if strings.EqualFold(organizer.Status, organizerStatusActive) {
		userStatus = v2.UserTrait_Status_STATUS_ENABLED
	}

	userOptions := []rs.UserTraitOption{
		rs.WithUserProfile(profile),
		rs.WithEmail(organizer.Email, true),
		rs.WithUserLogin(organizer.Email),
		rs.WithStatus(userStatus),
	}

	name := strings.TrimSpace(organizer.FirstName + " " + organizer.LastName)
	if name == "" {
		name = organizer.Email
	}

	resource, err := rs.NewUserResource(
		name,
		organizerResourceType,
		key,
		userOptions,
		rs.WithParentResourceID(parentID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create organizer resource: %w", err)
	}

	return resource, nil
}

func (o *organizerBuilder) ResourceType(ctx context.Context) *v2.ResourceType {
	return organizerResourceType
}

// List returns the organizers of the parent group.
// Organizers are only listed under a group; the top level has none.
func (o *organizerBuilder) List(ctx context.Context, parentResourceID *v2.ResourceId, pToken *pagination.Token) ([]*v2.Resource, string, annotations.Annotations, error) {
	if parentResourceID == nil {
		return nil, "", nil, nil
	}

	l := ctxzap.Extract(ctx)
	l.Debug("listing organizers", zap.String("group_key", parentResourceID.Resource))

	organizers, err := o.groups.GetOrganizersByGroup(ctx, parentResourceID.Resource)
	if err != nil {
		return nil, "", nil, fmt.Errorf("gotomeeting-connector: failed to list organizers: %w", err)
	}

	rv := make([]*v2.Resource, 0, len(organizers))
	for i := range organizers {
		ur, err := organizerResource(&organizers[i], parentResourceID)
		if err != nil {
			return nil, "", nil, fmt.Errorf("gotomeeting-connector: failed to create organizer resource: %w", err)
		}

		rv = append(rv, ur)
	}

	return rv, "", nil, nil
}

// Entitlements always returns an empty slice for organizers.
func (o *organizerBuilder) Entitlements(_ context.Context, resource *v2.Resource, _ *pagination.Token) ([]*v2.Entitlement, string, annotations.Annotations, error) {
	return nil, "", nil, nil
}

// Grants always returns an empty slice for organizers since they don't have any entitlements.
func (o *organizerBuilder) Grants(ctx context.Context, resource *v2.Resource, pToken *pagination.Token) ([]*v2.Grant, string, annotations.Annotations, error) {
	return nil, "", nil, nil
}

func newOrganizerBuilder(groups *gotomeeting.GroupService) *organizerBuilder {
	return &organizerBuilder{
		groups:       groups,
		resourceType: organizerResourceType,
	}
}
