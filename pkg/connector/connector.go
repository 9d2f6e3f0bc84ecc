package connector

import (
	"context"
	"net/http"
	"time"

	v2 "github.com/conductorone/baton-sdk/pb/c1/connector/v2"
	"github.com/conductorone/baton-sdk/pkg/annotations"
	"github.com/conductorone/baton-sdk/pkg/connectorbuilder"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/conductorone/baton-gotomeeting/pkg/gotomeeting"
)

const defaultProductType = "G2M"

// Config holds the connector options coming from the command line.
type Config struct {
	BaseURL string
	// ProductType is assigned to organizers created through provisioning.
	ProductType string
	// MeetingLookback switches meeting sync from scheduled to historical
	// meetings started within the last MeetingLookback.
	MeetingLookback time.Duration
}

type GoToMeeting struct {
	groups *gotomeeting.GroupService
	config Config
}

// ResourceSyncers returns a ResourceSyncer for each resource type that should be synced from the upstream service.
func (c *GoToMeeting) ResourceSyncers(ctx context.Context) []connectorbuilder.ResourceSyncer {
	return []connectorbuilder.ResourceSyncer{
		newGroupBuilder(c.groups, c.config.ProductType),
		newOrganizerBuilder(c.groups),
		newMeetingBuilder(c.groups, c.config.MeetingLookback),
	}
}

// Metadata returns metadata about the connector.
func (c *GoToMeeting) Metadata(ctx context.Context) (*v2.ConnectorMetadata, error) {
	return &v2.ConnectorMetadata{
		DisplayName: "GoToMeeting",
		Description: "Connector syncing GoToMeeting groups, their organizers and meetings to Baton",
	}, nil
}

// Validate is called to ensure that the connector is properly configured. Listing groups
// requires an admin token on a corporate account, so it exercises both.
func (c *GoToMeeting) Validate(ctx context.Context) (annotations.Annotations, error) {
	_, err := c.groups.GetGroups(ctx)
	if err != nil {
		ctxzap.Extract(ctx).Error("failed to list groups", zap.Error(err))
		return nil, status.Error(codes.Unauthenticated, "gotomeeting-connector: failed to validate credentials")
	}

	return nil, nil
}

// New returns a new instance of the connector using an already authenticated http client.
func New(ctx context.Context, httpClient *http.Client, cfg Config) (*GoToMeeting, error) {
	client, err := gotomeeting.NewClient(httpClient, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.ProductType == "" {
		cfg.ProductType = defaultProductType
	}

	return &GoToMeeting{
		groups: gotomeeting.NewGroupService(client),
		config: cfg,
	}, nil
}
