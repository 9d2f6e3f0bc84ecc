package connector

import (
	"context"
	"fmt"

	v2 "github.com/conductorone/baton-sdk/pb/c1/connector/v2"
	"github.com/conductorone/baton-sdk/pkg/annotations"
	"github.com/conductorone/baton-sdk/pkg/pagination"
	ent "github.com/conductorone/baton-sdk/pkg/types/entitlement"
	"github.com/conductorone/baton-sdk/pkg/types/grant"
	rs "github.com/conductorone/baton-sdk/pkg/types/resource"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/conductorone/baton-gotomeeting/pkg/gotomeeting"
)

const groupMemberEntitlement = "member"

type groupBuilder struct {
	groups      *gotomeeting.GroupService
	productType string
}

func (g *groupBuilder) ResourceType(ctx context.Context) *v2.ResourceType {
	return groupResourceType
}

func groupResource(group *gotomeeting.Group) (*v2.Resource, error) {
	profile := map[string]interface{}{
		"group_key":      formatKey(group.GroupKey),
		"group_name":     group.Name,
		"status":         group.Status,
		"num_organizers": group.NumOrganizers,
	}
	if group.ParentKey != 0 {
		profile["parent_key"] = formatKey(group.ParentKey)
	}

	resource, err := rs.NewGroupResource(
		group.Name,
		groupResourceType,
		formatKey(group.GroupKey),
		[]rs.GroupTraitOption{rs.WithGroupProfile(profile)},
		rs.WithAnnotation(
			&v2.ChildResourceType{ResourceTypeId: organizerResourceType.Id},
			&v2.ChildResourceType{ResourceTypeId: meetingResourceType.Id},
		),
	)
	if err != nil {
		return nil, err
	}

	return resource, nil
}

// List returns every group of the corporate account.
func (g *groupBuilder) List(ctx context.Context, parentResourceID *v2.ResourceId, pToken *pagination.Token) ([]*v2.Resource, string, annotations.Annotations, error) {
	l := ctxzap.Extract(ctx)
	l.Debug("listing groups")

	groups, err := g.groups.GetGroups(ctx)
	if err != nil {
		return nil, "", nil, fmt.Errorf("gotomeeting-connector: failed to list groups: %w", err)
	}

	rv := make([]*v2.Resource, 0, len(groups))
	for i := range groups {
		gr, err := groupResource(&groups[i])
		if err != nil {
			return nil, "", nil, fmt.Errorf("gotomeeting-connector: failed to create group resource: %w", err)
		}

		rv = append(rv, gr)
	}

	return rv, "", nil, nil
}

// Entitlements returns the membership entitlement of the group.
func (g *groupBuilder) Entitlements(ctx context.Context, resource *v2.Resource, _ *pagination.Token) ([]*v2.Entitlement, string, annotations.Annotations, error) {
	assignmentOptions := []ent.EntitlementOption{
		ent.WithGrantableTo(organizerResourceType),
		ent.WithDisplayName(fmt.Sprintf("%s group %s", resource.DisplayName, groupMemberEntitlement)),
		ent.WithDescription(fmt.Sprintf("Organizer in the %s group", resource.DisplayName)),
	}

	return []*v2.Entitlement{
		ent.NewAssignmentEntitlement(resource, groupMemberEntitlement, assignmentOptions...),
	}, "", nil, nil
}

// Grants returns a membership grant for every organizer of the group.
func (g *groupBuilder) Grants(ctx context.Context, resource *v2.Resource, pToken *pagination.Token) ([]*v2.Grant, string, annotations.Annotations, error) {
	l := ctxzap.Extract(ctx)
	l.Debug("listing group members", zap.String("group_key", resource.Id.Resource))

	organizers, err := g.groups.GetOrganizersByGroup(ctx, resource.Id.Resource)
	if err != nil {
		return nil, "", nil, fmt.Errorf("gotomeeting-connector: failed to list organizers of group %s: %w", resource.Id.Resource, err)
	}

	rv := make([]*v2.Grant, 0, len(organizers))
	for _, o := range organizers {
		principal := &v2.ResourceId{
			ResourceType: organizerResourceType.Id,
			Resource:     formatKey(o.OrganizerKey),
		}

		rv = append(rv, grant.NewGrant(resource, groupMemberEntitlement, principal))
	}

	return rv, "", nil, nil
}

// Grant creates the principal as an organizer of the group.
func (g *groupBuilder) Grant(ctx context.Context, principal *v2.Resource, entitlement *v2.Entitlement) (annotations.Annotations, error) {
	l := ctxzap.Extract(ctx)

	if principal.Id.ResourceType != organizerResourceType.Id {
		return nil, status.Errorf(codes.InvalidArgument, "gotomeeting-connector: only organizers can be added to a group, got %s", principal.Id.ResourceType)
	}

	email, err := primaryEmail(principal)
	if err != nil {
		return nil, err
	}

	groupKey := entitlement.Resource.Id.Resource
	organizer := &gotomeeting.Organizer{
		Email:       email,
		ProductType: g.productType,
	}

	_, err = g.groups.CreateOrganizer(ctx, groupKey, organizer)
	if err != nil {
		return nil, fmt.Errorf("gotomeeting-connector: failed to create organizer in group %s: %w", groupKey, err)
	}

	l.Info("created organizer",
		zap.String("group_key", groupKey),
		zap.Int64("organizer_key", organizer.OrganizerKey),
	)

	return nil, nil
}

// Revoke is not supported: the groups endpoint has no way to remove an organizer.
func (g *groupBuilder) Revoke(ctx context.Context, _ *v2.Grant) (annotations.Annotations, error) {
	return nil, status.Error(codes.Unimplemented, "gotomeeting-connector: removing organizers from a group is not supported")
}

func newGroupBuilder(groups *gotomeeting.GroupService, productType string) *groupBuilder {
	return &groupBuilder{
		groups:      groups,
		productType: productType,
	}
}
