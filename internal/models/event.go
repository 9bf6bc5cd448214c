package models

import "time"

const DateLayout = "2006-01-02"

// Event is a calendar entry organized by one user
type Event struct {
	ID           uint               `json:"id" gorm:"primaryKey"`
	Name         string             `json:"name" gorm:"size:255;not null"`
	Description  string             `json:"description" gorm:"type:text"`
	Date         time.Time          `json:"date" gorm:"type:date;not null;index"`
	OrganizerID  uint               `json:"organizer_id" gorm:"not null;index"`
	Organizer    *User              `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Participants []EventParticipant `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// EventParticipant is one registration per (event, user). Attended is
// only ever changed by the event organizer.
type EventParticipant struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EventID      uint      `json:"event_id" gorm:"not null;uniqueIndex:idx_event_participant_user"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_event_participant_user;index"`
	User         *User     `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	RegisteredAt time.Time `json:"registered_at" gorm:"autoCreateTime"`
	Attended     bool      `json:"attended" gorm:"default:false"`
}

type EventRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=20000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// AttendanceRequest lists the participants who attended; everyone else is
// marked absent.
type AttendanceRequest struct {
	Attended []uint `json:"attended"`
}

// CalendarMark is a background dot on the client calendar for a day that has entries.
type CalendarMark struct {
	Title   string `json:"title"`
	Start   string `json:"start"`
	Display string `json:"display"`
}

func NewCalendarMark(day time.Time) CalendarMark {
	return CalendarMark{Title: "", Start: day.Format(DateLayout), Display: "background"}
}
