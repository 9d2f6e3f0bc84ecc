package gotomeeting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sentRequest struct {
	method string
	path   string
	query  url.Values
	body   interface{}
}

// fakeRequester records every request and answers with a canned JSON body.
type fakeRequester struct {
	response string
	err      error
	requests []sentRequest
}

func (f *fakeRequester) SendRequest(_ context.Context, method, path string, query url.Values, body, response interface{}) error {
	f.requests = append(f.requests, sentRequest{method: method, path: path, query: query, body: body})
	if f.err != nil {
		return f.err
	}
	if response == nil {
		return nil
	}

	return json.Unmarshal([]byte(f.response), response)
}

func TestGroupPath(t *testing.T) {
	cases := []struct {
		desc     string
		groupKey string
		sub      string
		path     string
	}{
		{
			desc:     "numeric key",
			groupKey: "123",
			sub:      "organizers",
			path:     "groups/123/organizers",
		},
		{
			desc:     "key with reserved characters",
			groupKey: "a/b c",
			sub:      "meetings",
			path:     "groups/a%2Fb%20c/meetings",
		},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.path, groupPath(tc.groupKey, tc.sub), tc.desc)
	}
}

func TestGetGroups(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		desc     string
		response string
		err      error
		groups   []Group
	}{
		{
			desc:     "single group",
			response: `[{"groupKey":1,"name":"G1"}]`,
			groups:   []Group{{GroupKey: 1, Name: "G1"}},
		},
		{
			desc:     "groups keep response order",
			response: `[{"groupKey":3,"groupName":"C","parentKey":1,"status":"active","numOrganizers":2},{"groupKey":1,"groupName":"A"},{"groupKey":2,"groupName":"B"}]`,
			groups: []Group{
				{GroupKey: 3, Name: "C", ParentKey: 1, Status: "active", NumOrganizers: 2},
				{GroupKey: 1, Name: "A"},
				{GroupKey: 2, Name: "B"},
			},
		},
		{
			desc: "client error is propagated",
			err:  status.Error(codes.Unavailable, "down"),
		},
	}

	for _, tc := range cases {
		fr := &fakeRequester{response: tc.response, err: tc.err}
		groups, err := NewGroupService(fr).GetGroups(ctx)
		assert.Equal(t, tc.err, err, fmt.Sprintf("%s: unexpected error", tc.desc))
		assert.Equal(t, tc.groups, groups, tc.desc)
		require.Len(t, fr.requests, 1, tc.desc)
		assert.Equal(t, http.MethodGet, fr.requests[0].method, tc.desc)
		assert.Equal(t, "groups", fr.requests[0].path, tc.desc)
		assert.Nil(t, fr.requests[0].query, tc.desc)
	}
}

func TestGetOrganizersByGroup(t *testing.T) {
	fr := &fakeRequester{
		response: `[{"organizerKey":10,"groupKey":7,"email":"a@example.com","firstName":"Ann","lastName":"Lee","status":"active","productType":"G2M"},{"organizerKey":11,"groupKey":7,"email":"b@example.com"}]`,
	}

	organizers, err := NewGroupService(fr).GetOrganizersByGroup(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, organizers, 2)
	assert.Equal(t, int64(10), organizers[0].OrganizerKey)
	assert.Equal(t, "Ann", organizers[0].FirstName)
	assert.Equal(t, "active", organizers[0].Status)
	assert.Equal(t, "b@example.com", organizers[1].Email)

	require.Len(t, fr.requests, 1)
	assert.Equal(t, http.MethodGet, fr.requests[0].method)
	assert.Equal(t, "groups/7/organizers", fr.requests[0].path)
}

func TestInvalidGroupKey(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	for _, key := range []string{"", ".", ".."} {
		fr := &fakeRequester{response: `[]`}
		svc := NewGroupService(fr)

		_, err := svc.GetOrganizersByGroup(ctx, key)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), key)

		_, err = svc.CreateOrganizer(ctx, key, &Organizer{Email: "a@example.com"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err), key)

		_, err = svc.GetMeetingsByGroup(ctx, key, false, nil, nil)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), key)

		_, err = svc.GetAttendeesByGroup(ctx, key, now, now)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), key)

		assert.Empty(t, fr.requests, key)
	}
}

func TestCreateOrganizer(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		desc     string
		response string
		key      int64
		code     codes.Code
	}{
		{
			desc:     "numeric key",
			response: `5005`,
			key:      5005,
			code:     codes.OK,
		},
		{
			desc:     "string key",
			response: `"6006"`,
			key:      6006,
			code:     codes.OK,
		},
		{
			desc:     "object instead of scalar",
			response: `{"organizerKey":1}`,
			code:     codes.Unknown,
		},
	}

	for _, tc := range cases {
		fr := &fakeRequester{response: tc.response}
		organizer := &Organizer{Email: "new@example.com", ProductType: "G2M"}

		got, err := NewGroupService(fr).CreateOrganizer(ctx, "42", organizer)
		assert.Equal(t, tc.code, status.Code(err), tc.desc)

		require.Len(t, fr.requests, 1, tc.desc)
		assert.Equal(t, http.MethodPost, fr.requests[0].method, tc.desc)
		assert.Equal(t, "groups/42/organizers", fr.requests[0].path, tc.desc)
		assert.Equal(t, &OrganizerBody{OrganizerEmail: "new@example.com", ProductType: "G2M"}, fr.requests[0].body, tc.desc)

		if tc.code != codes.OK {
			assert.Nil(t, got, tc.desc)
			assert.Zero(t, organizer.OrganizerKey, tc.desc)
			continue
		}

		assert.Same(t, organizer, got, tc.desc)
		assert.Equal(t, tc.key, organizer.OrganizerKey, tc.desc)
	}
}

func TestGetMeetingsByGroup(t *testing.T) {
	ctx := context.Background()
	est := time.FixedZone("EST", -5*60*60)
	start := time.Date(2023, 1, 15, 10, 0, 0, 0, est)
	end := time.Date(2023, 1, 16, 10, 0, 0, 0, est)

	cases := []struct {
		desc       string
		historical bool
		start      *time.Time
		end        *time.Time
		query      url.Values
		code       codes.Code
	}{
		{
			desc:       "historical without start date",
			historical: true,
			end:        &end,
			code:       codes.InvalidArgument,
		},
		{
			desc:       "historical without end date",
			historical: true,
			start:      &start,
			code:       codes.InvalidArgument,
		},
		{
			desc:       "historical converts dates to UTC",
			historical: true,
			start:      &start,
			end:        &end,
			query: url.Values{
				"historical": []string{"true"},
				"startDate":  []string{"2023-01-15T15:00:00Z"},
				"endDate":    []string{"2023-01-16T15:00:00Z"},
			},
			code: codes.OK,
		},
		{
			desc:  "scheduled ignores dates",
			start: &start,
			end:   &end,
			query: url.Values{"scheduled": []string{"true"}},
			code:  codes.OK,
		},
		{
			desc:  "scheduled without dates",
			query: url.Values{"scheduled": []string{"true"}},
			code:  codes.OK,
		},
	}

	for _, tc := range cases {
		fr := &fakeRequester{response: `[{"meetingId":100,"subject":"Standup","status":"INACTIVE","startTime":"2023-01-15T15:00:00.+0000","organizerKey":10},{"meetingId":101,"subject":"Review"}]`}

		meetings, err := NewGroupService(fr).GetMeetingsByGroup(ctx, "9", tc.historical, tc.start, tc.end)
		assert.Equal(t, tc.code, status.Code(err), tc.desc)

		if tc.code != codes.OK {
			assert.Empty(t, fr.requests, tc.desc)
			continue
		}

		require.Len(t, fr.requests, 1, tc.desc)
		assert.Equal(t, http.MethodGet, fr.requests[0].method, tc.desc)
		assert.Equal(t, "groups/9/meetings", fr.requests[0].path, tc.desc)
		assert.Equal(t, tc.query, fr.requests[0].query, tc.desc)

		require.Len(t, meetings, 2, tc.desc)
		assert.Equal(t, int64(100), meetings[0].MeetingID, tc.desc)
		assert.Equal(t, "Standup", meetings[0].Subject, tc.desc)
		assert.Equal(t, int64(10), meetings[0].OrganizerKey, tc.desc)
		assert.Equal(t, int64(101), meetings[1].MeetingID, tc.desc)
	}

	// The caller's values are not modified by the UTC conversion.
	assert.Equal(t, est, start.Location())
}

func TestGetAttendeesByGroup(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	start := time.Date(2023, 1, 15, 10, 0, 0, 0, est)
	end := time.Date(2023, 1, 16, 10, 0, 0, 0, est)

	fr := &fakeRequester{
		response: `[
			{"meetingId":100,"subject":"Standup","attendeeName":"Ann","attendeeEmail":"ann@example.com","joinTime":"2023-01-15T15:01:00.+0000","leaveTime":"2023-01-15T15:20:00.+0000","duration":19},
			{"meetingId":200,"subject":"Review","attendeeName":"Bob","attendeeEmail":"bob@example.com"}
		]`,
	}

	res, err := NewGroupService(fr).GetAttendeesByGroup(context.Background(), "9", start, end)
	require.NoError(t, err)

	require.Len(t, fr.requests, 1)
	assert.Equal(t, http.MethodGet, fr.requests[0].method)
	assert.Equal(t, "groups/9/attendees", fr.requests[0].path)
	// Dates keep their own offset here.
	assert.Equal(t, url.Values{
		"startDate": []string{"2023-01-15T10:00:00Z"},
		"endDate":   []string{"2023-01-16T10:00:00Z"},
	}, fr.requests[0].query)

	require.Len(t, res.Meetings, 2)
	require.Len(t, res.Attendees, 2)
	assert.Equal(t, int64(100), res.Meetings[0].MeetingID)
	assert.Equal(t, "Standup", res.Meetings[0].Subject)
	assert.Equal(t, "Ann", res.Attendees[0].AttendeeName)
	assert.Equal(t, int64(100), res.Attendees[0].MeetingID)
	assert.Equal(t, 19, res.Attendees[0].Duration)
	assert.Equal(t, int64(200), res.Meetings[1].MeetingID)
	assert.Equal(t, "bob@example.com", res.Attendees[1].AttendeeEmail)
}

func TestGetAttendeesByGroupError(t *testing.T) {
	fr := &fakeRequester{err: status.Error(codes.NotFound, "no group")}
	now := time.Now()

	res, err := NewGroupService(fr).GetAttendeesByGroup(context.Background(), "9", now, now)
	assert.Nil(t, res)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
