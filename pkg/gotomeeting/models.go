package gotomeeting

import "encoding/json"

type Group struct {
	GroupKey      int64  `json:"groupKey"`
	ParentKey     int64  `json:"parentKey"`
	Name          string `json:"groupName"`
	Status        string `json:"status"`
	NumOrganizers int    `json:"numOrganizers"`
}

// UnmarshalJSON accepts both the documented "groupName" field and the
// shorter "name" some account types return.
func (g *Group) UnmarshalJSON(data []byte) error {
	type group Group
	var raw struct {
		group
		AltName string `json:"name"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*g = Group(raw.group)
	if g.Name == "" {
		g.Name = raw.AltName
	}

	return nil
}

// Organizer is a user allowed to host meetings within a group.
// OrganizerKey stays zero until the organizer is read back from the API or
// assigned by GroupService.CreateOrganizer.
type Organizer struct {
	OrganizerKey           int64  `json:"organizerKey"`
	GroupKey               int64  `json:"groupKey"`
	GroupName              string `json:"groupName"`
	Email                  string `json:"email"`
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	ProductType            string `json:"productType"`
	Status                 string `json:"status"`
	MaxNumAttendeesAllowed int    `json:"maxNumAttendeesAllowed"`
}

type OrganizerBody struct {
	OrganizerEmail string `json:"organizerEmail"`
	ProductType    string `json:"productType"`
}

// ForAPI returns the request body used to create the organizer.
func (o *Organizer) ForAPI() *OrganizerBody {
	return &OrganizerBody{
		OrganizerEmail: o.Email,
		ProductType:    o.ProductType,
	}
}

type Meeting struct {
	MeetingID          int64  `json:"meetingId"`
	MeetingInstanceKey int64  `json:"meetingInstanceKey"`
	OrganizerKey       int64  `json:"organizerKey"`
	Subject            string `json:"subject"`
	MeetingType        string `json:"meetingType"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	TimeZoneKey        string `json:"timeZoneKey"`
	Status             string `json:"status"`
	ConferenceCallInfo string `json:"conferenceCallInfo"`
	PasswordRequired   bool   `json:"passwordRequired"`
	Duration           int    `json:"duration"`
	NumAttendees       int    `json:"numAttendees"`
	MaxParticipants    int    `json:"maxParticipants"`
}

type Attendee struct {
	AttendeeName       string `json:"attendeeName"`
	AttendeeEmail      string `json:"attendeeEmail"`
	JoinTime           string `json:"joinTime"`
	LeaveTime          string `json:"leaveTime"`
	Duration           int    `json:"duration"`
	MeetingID          int64  `json:"meetingId"`
	MeetingInstanceKey int64  `json:"meetingInstanceKey"`
}

// GroupAttendance holds the meeting and attendee facets of each attendee
// record. Meetings[i] and Attendees[i] come from the same record.
type GroupAttendance struct {
	Meetings  []Meeting
	Attendees []Attendee
}
