package gotomeeting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	GroupsEndpoint = "groups"

	organizersPath = "organizers"
	meetingsPath   = "meetings"
	attendeesPath  = "attendees"

	// DateFormatInput is the layout the API accepts for every date query parameter.
	DateFormatInput = "2006-01-02T15:04:05Z"
)

// GroupService covers the groups endpoint. It requires a corporate account
// and a token belonging to an admin.
type GroupService struct {
	client Requester
}

func NewGroupService(client Requester) *GroupService {
	return &GroupService{
		client: client,
	}
}

// groupPath returns "groups/{groupKey}/{sub}" with the key escaped as a
// single path segment.
func groupPath(groupKey, sub string) string {
	return fmt.Sprintf("%s/%s/%s", GroupsEndpoint, url.PathEscape(groupKey), sub)
}

func checkGroupKey(groupKey string) error {
	switch groupKey {
	case "":
		return status.Error(codes.InvalidArgument, "gotomeeting: group key is required")
	case ".", "..":
		return status.Errorf(codes.InvalidArgument, "gotomeeting: invalid group key %q", groupKey)
	}

	return nil
}

// GetGroups returns every group of the corporate account in API order.
func (s *GroupService) GetGroups(ctx context.Context) ([]Group, error) {
	var res []Group
	err := s.client.SendRequest(ctx, http.MethodGet, GroupsEndpoint, nil, nil, &res)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *GroupService) GetOrganizersByGroup(ctx context.Context, groupKey string) ([]Organizer, error) {
	if err := checkGroupKey(groupKey); err != nil {
		return nil, err
	}

	var res []Organizer
	err := s.client.SendRequest(ctx, http.MethodGet, groupPath(groupKey, organizersPath), nil, nil, &res)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// CreateOrganizer creates the organizer in the given group. The key returned
// by the API is written into organizer, and the same pointer is returned.
// Callers must not share organizer across concurrent calls.
func (s *GroupService) CreateOrganizer(ctx context.Context, groupKey string, organizer *Organizer) (*Organizer, error) {
	if err := checkGroupKey(groupKey); err != nil {
		return nil, err
	}
	if organizer == nil {
		return nil, status.Error(codes.InvalidArgument, "gotomeeting: organizer is required")
	}

	var res json.RawMessage
	err := s.client.SendRequest(ctx, http.MethodPost, groupPath(groupKey, organizersPath), nil, organizer.ForAPI(), &res)
	if err != nil {
		return nil, err
	}

	key, err := parseKey(res)
	if err != nil {
		return nil, fmt.Errorf("gotomeeting: unexpected organizer key in response: %w", err)
	}

	organizer.OrganizerKey = key

	return organizer, nil
}

// GetMeetingsByGroup returns the scheduled meetings of a group, or its
// historical meetings between startDate and endDate when historical is set.
// Dates are converted to UTC before being sent.
func (s *GroupService) GetMeetingsByGroup(ctx context.Context, groupKey string, historical bool, startDate, endDate *time.Time) ([]Meeting, error) {
	if historical && (startDate == nil || endDate == nil) {
		return nil, status.Error(codes.InvalidArgument, "gotomeeting: startDate and endDate are required for historical meetings")
	}
	if err := checkGroupKey(groupKey); err != nil {
		return nil, err
	}

	query := url.Values{}
	if historical {
		query.Set("historical", "true")
		query.Set("startDate", startDate.UTC().Format(DateFormatInput))
		query.Set("endDate", endDate.UTC().Format(DateFormatInput))
	} else {
		query.Set("scheduled", "true")
	}

	var res []Meeting
	err := s.client.SendRequest(ctx, http.MethodGet, groupPath(groupKey, meetingsPath), query, nil, &res)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// GetAttendeesByGroup returns attendance for the group's meetings in the date
// range. Unlike GetMeetingsByGroup, the dates are formatted in their own
// location without conversion to UTC.
func (s *GroupService) GetAttendeesByGroup(ctx context.Context, groupKey string, startDate, endDate time.Time) (*GroupAttendance, error) {
	if err := checkGroupKey(groupKey); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("startDate", startDate.Format(DateFormatInput))
	query.Set("endDate", endDate.Format(DateFormatInput))

	var res []json.RawMessage
	err := s.client.SendRequest(ctx, http.MethodGet, groupPath(groupKey, attendeesPath), query, nil, &res)
	if err != nil {
		return nil, err
	}

	rv := &GroupAttendance{
		Meetings:  make([]Meeting, 0, len(res)),
		Attendees: make([]Attendee, 0, len(res)),
	}
	for _, record := range res {
		var m Meeting
		if err := json.Unmarshal(record, &m); err != nil {
			return nil, err
		}

		var a Attendee
		if err := json.Unmarshal(record, &a); err != nil {
			return nil, err
		}

		rv.Meetings = append(rv.Meetings, m)
		rv.Attendees = append(rv.Attendees, a)
	}

	return rv, nil
}

// parseKey reads a key sent either as a JSON number or as a numeric string.
func parseKey(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}

	return strconv.ParseInt(s, 10, 64)
}
