package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type TicketType string

const (
	TypeComplaint  TicketType = "COMPLAINT"
	TypePositive   TicketType = "POSITIVE"
	TypeSuggestion TicketType = "SUGGESTION"
)

// TicketStatus is the lifecycle state of a ticket. The allowed edges live in
// services.Lifecycle; CLOSED is terminal.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "OPEN"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusResolved   TicketStatus = "RESOLVED"
	StatusClosed     TicketStatus = "CLOSED"
)

// Terminal reports whether the status permits citizen rating.
func (s TicketStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// Location is the hierarchical place a ticket refers to. Province, district
// and sector are validated against the fixed taxonomy only when the country
// is Rwanda; otherwise they are free text.
type Location struct {
	Country      string `json:"country"`
	Province     string `json:"province,omitempty"`
	District     string `json:"district,omitempty"`
	Sector       string `json:"sector,omitempty"`
	OtherDetails string `json:"otherDetails,omitempty"`
}

type Ticket struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// TicketNumber is the human-facing CT-XXXXXX code, immutable for the
	// lifetime of the ticket.
	TicketNumber string `gorm:"uniqueIndex;not null" json:"ticketNumber"`

	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Type        TicketType `gorm:"type:text;not null" json:"type"`
	Category    string     `gorm:"index;not null" json:"category"`
	Subcategory string     `json:"subcategory,omitempty"`

	Status TicketStatus `gorm:"type:text;default:'OPEN';index" json:"status"`

	IsPublic    bool `gorm:"default:true" json:"isPublic"`
	IsAnonymous bool `gorm:"default:false" json:"isAnonymous"`

	// AuthorID is withheld at read time for anonymous tickets; see
	// services.RedactTicket. It is never deleted from storage.
	AuthorID *string `gorm:"index" json:"authorId,omitempty"`
	Author   *User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Location Location `gorm:"embedded;embeddedPrefix:location_" json:"location"`

	Attachments pq.StringArray `gorm:"type:text[]" json:"attachments"`

	AssignedAgency string  `json:"assignedAgency,omitempty"`
	AssignedToID   *string `json:"assignedToId,omitempty"`
	AssignedTo     *User   `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`

	FollowersCount int  `gorm:"default:0" json:"followersCount"`
	LikesCount     int  `gorm:"default:0" json:"likesCount"`
	Views          int  `gorm:"default:0" json:"views"`
	Rating         *int `json:"rating,omitempty"`

	// Version guards status transitions with an optimistic check so two
	// concurrent staff updates cannot both apply.
	Version int `gorm:"default:0" json:"-"`

	StatusHistory []StatusHistory `gorm:"foreignKey:TicketID" json:"statusHistory,omitempty"`

	// Latest official response, resolved at read time.
	Response *TicketResponse `gorm:"-" json:"response,omitempty"`

	// Virtual fields for the requesting user.
	IsFollowing bool `gorm:"-" json:"isFollowing"`
	HasLiked    bool `gorm:"-" json:"hasLiked"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// StatusHistory is append-only. The first entry records the initial OPEN
// transition at creation and the last entry always matches Ticket.Status.
type StatusHistory struct {
	ID          string       `gorm:"primaryKey;type:text" json:"id"`
	TicketID    string       `gorm:"index;not null" json:"ticketId"`
	Status      TicketStatus `gorm:"type:text;not null" json:"status"`
	ChangedByID *string      `json:"changedById,omitempty"`
	ChangedBy   *User        `gorm:"foreignKey:ChangedByID" json:"changedBy,omitempty"`
	Note        string       `gorm:"type:text" json:"note"`
	CreatedAt   time.Time    `json:"timestamp"`
}

func (h *StatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

// TicketResponse is an official staff/admin reply, distinct from citizen
// comments. The newest one is surfaced on the ticket payload.
type TicketResponse struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	TicketID    string    `gorm:"index;not null" json:"ticketId"`
	ResponderID string    `gorm:"not null" json:"responderId"`
	Responder   *User     `gorm:"foreignKey:ResponderID" json:"responder,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (r *TicketResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

type CommentAuthorType string

const (
	CommentAuthorCitizen CommentAuthorType = "CITIZEN"
	CommentAuthorAdmin   CommentAuthorType = "ADMIN"
)

type Comment struct {
	ID         string            `gorm:"primaryKey;type:text" json:"id"`
	TicketID   string            `gorm:"index;not null" json:"ticketId"`
	AuthorID   string            `gorm:"not null" json:"authorId"`
	Author     *User             `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AuthorType CommentAuthorType `gorm:"type:text;not null" json:"authorType"`
	Message    string            `gorm:"type:text;not null" json:"message"`
	LikesCount int               `gorm:"default:0" json:"likesCount"`
	CreatedAt  time.Time         `json:"timestamp"`

	HasLiked bool `gorm:"-" json:"hasLiked"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Membership join tables backing the idempotent toggles. The composite
// unique indexes make duplicate toggles collapse at the storage layer.

type TicketFollow struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	TicketID  string    `gorm:"uniqueIndex:idx_ticket_follower" json:"ticketId"`
	UserID    string    `gorm:"uniqueIndex:idx_ticket_follower" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *TicketFollow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

type TicketLike struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	TicketID  string    `gorm:"uniqueIndex:idx_ticket_liker" json:"ticketId"`
	UserID    string    `gorm:"uniqueIndex:idx_ticket_liker" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *TicketLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

type CommentLike struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CommentID string    `gorm:"uniqueIndex:idx_comment_liker" json:"commentId"`
	UserID    string    `gorm:"uniqueIndex:idx_comment_liker" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
