package graph

// UserInfo is the subset of the Graph user resource the client reads.
type UserInfo struct {
	ID                string   `json:"id,omitempty"`
	DisplayName       string   `json:"displayName,omitempty"`
	GivenName         string   `json:"givenName,omitempty"`
	Surname           string   `json:"surname,omitempty"`
	Mail              string   `json:"mail,omitempty"`
	UserPrincipalName string   `json:"userPrincipalName,omitempty"`
	JobTitle          string   `json:"jobTitle,omitempty"`
	OfficeLocation    string   `json:"officeLocation,omitempty"`
	BusinessPhones    []string `json:"businessPhones,omitempty"`
}

// CalendarInfo describes a calendar.
type CalendarInfo struct {
	ID                  string        `json:"id,omitempty"`
	Name                string        `json:"name,omitempty"`
	Color               string        `json:"color,omitempty"`
	HexColor            string        `json:"hexColor,omitempty"`
	IsDefaultCalendar   bool          `json:"isDefaultCalendar,omitempty"`
	CanEdit             bool          `json:"canEdit,omitempty"`
	CanShare            bool          `json:"canShare,omitempty"`
	CanViewPrivateItems bool          `json:"canViewPrivateItems,omitempty"`
	ChangeKey           string        `json:"changeKey,omitempty"`
	Owner               *EmailAddress `json:"owner,omitempty"`
}

// EventInfo is a calendar event. Zero fields are omitted so the same type can
// be used as a create body.
type EventInfo struct {
	ID                   string            `json:"id,omitempty"`
	Subject              string            `json:"subject,omitempty"`
	Body                 *ItemBody         `json:"body,omitempty"`
	BodyPreview          string            `json:"bodyPreview,omitempty"`
	Start                *DateTimeTimeZone `json:"start,omitempty"`
	End                  *DateTimeTimeZone `json:"end,omitempty"`
	Location             *Location         `json:"location,omitempty"`
	Organizer            *Recipient        `json:"organizer,omitempty"`
	Attendees            []Attendee        `json:"attendees,omitempty"`
	IsAllDay             bool              `json:"isAllDay,omitempty"`
	IsCancelled          bool              `json:"isCancelled,omitempty"`
	IsOnlineMeeting      bool              `json:"isOnlineMeeting,omitempty"`
	Importance           string            `json:"importance,omitempty"`
	Sensitivity          string            `json:"sensitivity,omitempty"`
	ShowAs               string            `json:"showAs,omitempty"`
	Type                 string            `json:"type,omitempty"`
	Categories           []string          `json:"categories,omitempty"`
	SeriesMasterID       string            `json:"seriesMasterId,omitempty"`
	WebLink              string            `json:"webLink,omitempty"`
	CreatedDateTime      string            `json:"createdDateTime,omitempty"`
	LastModifiedDateTime string            `json:"lastModifiedDateTime,omitempty"`
}

// ItemBody is rich text content.
type ItemBody struct {
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content,omitempty"`
}

// DateTimeTimeZone is a wall-clock time with its Windows or IANA zone name.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Location is where an event takes place.
type Location struct {
	DisplayName  string `json:"displayName,omitempty"`
	LocationType string `json:"locationType,omitempty"`
}

// EmailAddress names a mailbox.
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// Recipient wraps an EmailAddress.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// Attendee is an invited recipient.
type Attendee struct {
	Type         string          `json:"type,omitempty"`
	EmailAddress EmailAddress    `json:"emailAddress"`
	Status       *ResponseStatus `json:"status,omitempty"`
}

// ResponseStatus is an attendee's reply.
type ResponseStatus struct {
	Response string `json:"response,omitempty"`
	Time     string `json:"time,omitempty"`
}

// GetScheduleRequest is the body of calendar/getSchedule.
type GetScheduleRequest struct {
	// Schedules lists SMTP addresses of users, distribution lists or resources.
	Schedules []string         `json:"schedules"`
	StartTime DateTimeTimeZone `json:"startTime"`
	EndTime   DateTimeTimeZone `json:"endTime"`
	// AvailabilityViewInterval is the slot length in minutes, 5 to 1440. Zero uses the server default of 30.
	AvailabilityViewInterval int `json:"availabilityViewInterval,omitempty"`
}

// ScheduleInformation is the availability of one schedule.
type ScheduleInformation struct {
	ScheduleID       string         `json:"scheduleId"`
	AvailabilityView string         `json:"availabilityView"`
	ScheduleItems    []ScheduleItem `json:"scheduleItems"`
	WorkingHours     *WorkingHours  `json:"workingHours,omitempty"`
	Error            *FreeBusyError `json:"error,omitempty"`
}

// ScheduleItem is one busy block.
type ScheduleItem struct {
	Status    string           `json:"status"`
	Subject   string           `json:"subject,omitempty"`
	Location  string           `json:"location,omitempty"`
	IsPrivate bool             `json:"isPrivate,omitempty"`
	Start     DateTimeTimeZone `json:"start"`
	End       DateTimeTimeZone `json:"end"`
}

// WorkingHours describes a mailbox's configured working time.
type WorkingHours struct {
	DaysOfWeek []string `json:"daysOfWeek"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
}

// FreeBusyError is reported per schedule when availability cannot be read.
type FreeBusyError struct {
	Message      string `json:"message"`
	ResponseCode string `json:"responseCode"`
}
