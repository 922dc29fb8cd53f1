// Package model defines domain entities used by services, caches and the sync layer.
package model

import "time"

// SyncStatus marks whether a cached row is confirmed by the remote store.
type SyncStatus string

// Row sync states. A row starts Pending on local creation and becomes
// Synced only after the remote store confirms the write (or the row
// arrived from the remote store in the first place).
const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// Millis returns t as epoch milliseconds, the unit the remote store stamps
// documents with and the unit every cached timestamp column uses.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// User is a cached alumni profile mirroring the remote "users" document.
type User struct {
	UserID            string   `json:"userId"`
	Email             string   `json:"email"`
	FullName          string   `json:"fullName"`
	ProfileImageURL   string   `json:"profileImageUrl"`
	Bio               string   `json:"bio"`
	GraduationYear    int      `json:"graduationYear"`
	Major             string   `json:"major"`
	CurrentJobTitle   string   `json:"currentJobTitle"`
	CurrentCompany    string   `json:"currentCompany"`
	Location          string   `json:"location"`
	Skills            []string `json:"skills"`
	LinkedinURL       string   `json:"linkedinUrl"`
	GithubURL         string   `json:"githubUrl"`
	WebsiteURL        string   `json:"websiteUrl"`
	IsMentor          bool     `json:"isMentor"`
	MentorExpertise   string   `json:"mentorExpertise"`
	IsOnline          bool     `json:"isOnline"`
	LastSeen          int64    `json:"lastSeen"`
	ProfileVisibility string   `json:"privacyProfileVisibility"`
	ContactVisibility string   `json:"privacyContactVisibility"`
	CreatedAt         int64    `json:"createdAt"`
	UpdatedAt         int64    `json:"updatedAt"`

	// Local-only sync metadata, never written back to the remote store.
	SyncStatus SyncStatus `json:"-"`
	LastSync   int64      `json:"-"`
}

// JobPosting is a cached job posting mirroring the remote "job_postings" document.
type JobPosting struct {
	JobID               string   `json:"jobId"`
	Company             string   `json:"company"`
	Position            string   `json:"position"`
	Description         string   `json:"description"`
	Requirements        []string `json:"requirements"`
	Location            string   `json:"location"`
	JobType             string   `json:"jobType"` // full-time, part-time, contract, internship
	ExperienceLevel     string   `json:"experienceLevel"`
	SalaryRange         string   `json:"salaryRange"`
	ApplicationDeadline int64    `json:"applicationDeadline"`
	ApplicationURL      string   `json:"applicationUrl"`
	PostedByUserID      string   `json:"postedByUserId"`
	PostedByName        string   `json:"postedByName"`
	PostedAt            int64    `json:"postedAt"`
	IsActive            bool     `json:"isActive"`
	Tags                []string `json:"tags"`
	CreatedAt           int64    `json:"createdAt"`
	UpdatedAt           int64    `json:"updatedAt"`

	SyncStatus SyncStatus `json:"-"`
	LastSync   int64      `json:"-"`
}

// Event is a cached alumni event mirroring the remote "alumni_events" document.
type Event struct {
	EventID              string   `json:"eventId"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	StartTime            int64    `json:"dateTime"`
	EndTime              int64    `json:"endDateTime"`
	Location             string   `json:"location"`
	Venue                string   `json:"venue"`
	IsVirtual            bool     `json:"isVirtual"`
	MeetingLink          string   `json:"meetingLink"`
	MaxAttendees         int      `json:"maxAttendees"`
	CurrentAttendees     int      `json:"currentAttendees"`
	RegistrationDeadline int64    `json:"registrationDeadline"`
	IsPaid               bool     `json:"isPaid"`
	Price                float64  `json:"price"`
	Currency             string   `json:"currency"`
	OrganizerID          string   `json:"organizerId"`
	OrganizerName        string   `json:"organizerName"`
	ContactEmail         string   `json:"contactEmail"`
	ContactPhone         string   `json:"contactPhone"`
	ImageURL             string   `json:"imageUrl"`
	Tags                 []string `json:"tags"`
	IsActive             bool     `json:"isActive"`
	CreatedAt            int64    `json:"createdAt"`
	UpdatedAt            int64    `json:"updatedAt"`

	SyncStatus SyncStatus `json:"-"`
	LastSync   int64      `json:"-"`
}

// ChatMessage is a cached one-to-one chat message. ChatID references the
// thread; MessageID is the identity shared with the remote store.
type ChatMessage struct {
	MessageID        string `json:"messageId"`
	ChatID           string `json:"chatId"`
	SenderID         string `json:"senderId"`
	SenderName       string `json:"senderName"`
	Content          string `json:"content"`
	MessageType      string `json:"messageType"` // text, image, file
	FileURL          string `json:"fileUrl"`
	FileName         string `json:"fileName"`
	FileSize         int64  `json:"fileSize"`
	Timestamp        int64  `json:"timestamp"`
	ReadStatus       bool   `json:"readStatus"`
	ReadTimestamp    int64  `json:"readTimestamp"`
	ReplyToMessageID string `json:"replyToMessageId"`
	IsEdited         bool   `json:"isEdited"`
	EditTimestamp    int64  `json:"editTimestamp"`
	IsDeleted        bool   `json:"isDeleted"`
	DeleteTimestamp  int64  `json:"deleteTimestamp"`

	SyncStatus SyncStatus `json:"-"`
	LastSync   int64      `json:"-"`
}

// ChatThread is a remote chat document: the set of participants of a
// one-to-one conversation. Threads are enumerated during the chat pass and
// are not cached themselves.
type ChatThread struct {
	ChatID         string   `json:"chatId"`
	ParticipantIDs []string `json:"participantIds"`
	UpdatedAt      int64    `json:"updatedAt"`
}
