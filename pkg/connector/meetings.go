package connector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	v2 "github.com/conductorone/baton-sdk/pb/c1/connector/v2"
	"github.com/conductorone/baton-sdk/pkg/annotations"
	"github.com/conductorone/baton-sdk/pkg/pagination"
	ent "github.com/conductorone/baton-sdk/pkg/types/entitlement"
	"github.com/conductorone/baton-sdk/pkg/types/grant"
	rs "github.com/conductorone/baton-sdk/pkg/types/resource"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/conductorone/baton-gotomeeting/pkg/gotomeeting"
)

const (
	meetingOrganizerEntitlement = "organizer"
	meetingAttendeeEntitlement  = "attendee"
)

var meetingEntitlements = map[string]string{
	meetingOrganizerEntitlement: "Organizer hosting the %s meeting",
	meetingAttendeeEntitlement:  "Organizer who attended the %s meeting",
}

type meetingBuilder struct {
	groups   *gotomeeting.GroupService
	lookback time.Duration
	now      func() time.Time

	windowOnce  sync.Once
	start, end  time.Time
	mu          sync.Mutex
	attendances map[string]*gotomeeting.GroupAttendance
}

func (m *meetingBuilder) ResourceType(ctx context.Context) *v2.ResourceType {
	return meetingResourceType
}

// meetingID identifies a single occurrence when the API reports an instance key.
func meetingID(meeting *gotomeeting.Meeting) string {
	if meeting.MeetingInstanceKey != 0 {
		return fmt.Sprintf("%d:%d", meeting.MeetingID, meeting.MeetingInstanceKey)
	}

	return formatKey(meeting.MeetingID)
}

func meetingResource(meeting *gotomeeting.Meeting, parentID *v2.ResourceId) (*v2.Resource, error) {
	profile := map[string]interface{}{
		"meeting_id":    formatKey(meeting.MeetingID),
		"organizer_key": formatKey(meeting.OrganizerKey),
		"subject":       meeting.Subject,
		"meeting_type":  meeting.MeetingType,
		"status":        meeting.Status,
		"start_time":    meeting.StartTime,
		"end_time":      meeting.EndTime,
		"time_zone":     meeting.TimeZoneKey,
	}
	if meeting.MeetingInstanceKey != 0 {
		profile["meeting_instance_key"] = formatKey(meeting.MeetingInstanceKey)
	}

	name := meeting.Subject
	if name == "" {
		name = formatKey(meeting.MeetingID)
	}

	return rs.NewGroupResource(
		name,
		meetingResourceType,
		meetingID(meeting),
		[]rs.GroupTraitOption{rs.WithGroupProfile(profile)},
		rs.WithParentResourceID(parentID),
	)
}

// window returns the historical range to sync. A zero lookback selects scheduled meetings.
// The range is fixed on first use so meetings and attendance cover the same period.
func (m *meetingBuilder) window() (time.Time, time.Time, bool) {
	if m.lookback <= 0 {
		return time.Time{}, time.Time{}, false
	}

	m.windowOnce.Do(func() {
		m.end = m.now().UTC()
		m.start = m.end.Add(-m.lookback)
	})

	return m.start, m.end, true
}

// groupAttendance fetches the attendance of a group once per window.
func (m *meetingBuilder) groupAttendance(ctx context.Context, groupKey string, start, end time.Time) (*gotomeeting.GroupAttendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.attendances[groupKey]; ok {
		return a, nil
	}

	// The attendees endpoint does not convert dates to UTC, so they are passed in UTC already.
	a, err := m.groups.GetAttendeesByGroup(ctx, groupKey, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}

	m.attendances[groupKey] = a
	return a, nil
}

// List returns the scheduled meetings of the parent group, or its historical
// meetings within the lookback window when one is configured.
func (m *meetingBuilder) List(ctx context.Context, parentResourceID *v2.ResourceId, pToken *pagination.Token) ([]*v2.Resource, string, annotations.Annotations, error) {
	if parentResourceID == nil {
		return nil, "", nil, nil
	}

	l := ctxzap.Extract(ctx)

	var (
		meetings []gotomeeting.Meeting
		err      error
	)
	start, end, historical := m.window()
	if historical {
		l.Debug("listing historical meetings",
			zap.String("group_key", parentResourceID.Resource),
			zap.Time("start", start),
			zap.Time("end", end),
		)
		meetings, err = m.groups.GetMeetingsByGroup(ctx, parentResourceID.Resource, true, &start, &end)
	} else {
		l.Debug("listing scheduled meetings", zap.String("group_key", parentResourceID.Resource))
		meetings, err = m.groups.GetMeetingsByGroup(ctx, parentResourceID.Resource, false, nil, nil)
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("gotomeeting-connector: failed to list meetings: %w", err)
	}

	rv := make([]*v2.Resource, 0, len(meetings))
	for i := range meetings {
		mr, err := meetingResource(&meetings[i], parentResourceID)
		if err != nil {
			return nil, "", nil, fmt.Errorf("gotomeeting-connector: failed to create meeting resource: %w", err)
		}

		rv = append(rv, mr)
	}

	return rv, "", nil, nil
}

func (m *meetingBuilder) Entitlements(ctx context.Context, resource *v2.Resource, _ *pagination.Token) ([]*v2.Entitlement, string, annotations.Annotations, error) {
	rv := make([]*v2.Entitlement, 0, len(meetingEntitlements))
	for _, name := range []string{meetingOrganizerEntitlement, meetingAttendeeEntitlement} {
		options := []ent.EntitlementOption{
			ent.WithGrantableTo(organizerResourceType),
			ent.WithDisplayName(fmt.Sprintf("%s meeting %s", resource.DisplayName, name)),
			ent.WithDescription(fmt.Sprintf(meetingEntitlements[name], resource.DisplayName)),
		}

		rv = append(rv, ent.NewAssignmentEntitlement(resource, name, options...))
	}

	return rv, "", nil, nil
}

// Grants returns the organizer grant of the meeting. In historical mode it also
// returns an attendee grant for each organizer of the group who joined it.
func (m *meetingBuilder) Grants(ctx context.Context, resource *v2.Resource, pToken *pagination.Token) ([]*v2.Grant, string, annotations.Annotations, error) {
	trait, err := rs.GetGroupTrait(resource)
	if err != nil {
		return nil, "", nil, err
	}

	var rv []*v2.Grant
	if organizerKey, ok := rs.GetProfileStringValue(trait.Profile, "organizer_key"); ok && organizerKey != "" && organizerKey != "0" {
		rv = append(rv, grant.NewGrant(resource, meetingOrganizerEntitlement, &v2.ResourceId{
			ResourceType: organizerResourceType.Id,
			Resource:     organizerKey,
		}))
	}

	start, end, historical := m.window()
	if !historical {
		return rv, "", nil, nil
	}

	groupKey, err := parentGroupKey(resource)
	if err != nil {
		return nil, "", nil, err
	}

	attendeeGrants, err := m.attendeeGrants(ctx, resource, groupKey, trait, start, end)
	if err != nil {
		return nil, "", nil, err
	}

	return append(rv, attendeeGrants...), "", nil, nil
}

func (m *meetingBuilder) attendeeGrants(ctx context.Context, resource *v2.Resource, groupKey string, trait *v2.GroupTrait, start, end time.Time) ([]*v2.Grant, error) {
	l := ctxzap.Extract(ctx)

	id, _ := rs.GetProfileStringValue(trait.Profile, "meeting_id")
	instance, _ := rs.GetProfileStringValue(trait.Profile, "meeting_instance_key")

	attendance, err := m.groupAttendance(ctx, groupKey, start, end)
	if err != nil {
		return nil, fmt.Errorf("gotomeeting-connector: failed to list attendees of group %s: %w", groupKey, err)
	}

	emails := make(map[string]struct{})
	for i, meeting := range attendance.Meetings {
		if formatKey(meeting.MeetingID) != id {
			continue
		}
		if instance != "" && meeting.MeetingInstanceKey != 0 && formatKey(meeting.MeetingInstanceKey) != instance {
			continue
		}

		email := strings.ToLower(attendance.Attendees[i].AttendeeEmail)
		if email != "" {
			emails[email] = struct{}{}
		}
	}

	if len(emails) == 0 {
		return nil, nil
	}

	organizers, err := m.groups.GetOrganizersByGroup(ctx, groupKey)
	if err != nil {
		return nil, fmt.Errorf("gotomeeting-connector: failed to list organizers of group %s: %w", groupKey, err)
	}

	var rv []*v2.Grant
	for _, o := range organizers {
		if _, ok := emails[strings.ToLower(o.Email)]; !ok {
			continue
		}

		rv = append(rv, grant.NewGrant(resource, meetingAttendeeEntitlement, &v2.ResourceId{
			ResourceType: organizerResourceType.Id,
			Resource:     formatKey(o.OrganizerKey),
		}))
	}

	l.Debug("matched meeting attendees",
		zap.String("meeting", resource.Id.Resource),
		zap.Int("attendees", len(emails)),
		zap.Int("grants", len(rv)),
	)

	return rv, nil
}

func newMeetingBuilder(groups *gotomeeting.GroupService, lookback time.Duration) *meetingBuilder {
	return &meetingBuilder{
		groups:      groups,
		lookback:    lookback,
		now:         time.Now,
		attendances: make(map[string]*gotomeeting.GroupAttendance),
	}
}
