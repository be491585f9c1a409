package domain

import "time"

// TimeSlot is an advisor-published one hour window customers can book.
type TimeSlot struct {
	ID        int64     `json:"id" db:"id"`
	AdvisorID int64     `json:"advisor_id" db:"advisor_id"`
	Date      time.Time `json:"date" db:"slot_date"`
	StartTime string    `json:"start_time" db:"start_time"` // "HH:MM"
	EndTime   string    `json:"end_time" db:"end_time"`     // start + 1h
	IsBooked  bool      `json:"is_booked" db:"is_booked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	AdvisorName  string `json:"advisor_name,omitempty" db:"-"`
	AdvisorEmail string `json:"advisor_email,omitempty" db:"-"`
	BookingCount int    `json:"booking_count,omitempty" db:"-"`
}

// StartAt combines the slot date and start time in loc.
func (s *TimeSlot) StartAt(loc *time.Location) time.Time {
	t, err := time.ParseInLocation("15:04", s.StartTime, loc)
	if err != nil {
		return time.Time{}
	}
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

type ConsultationStatus string

const (
	ConsultationBooked    ConsultationStatus = "booked"
	ConsultationCompleted ConsultationStatus = "completed"
	ConsultationCancelled ConsultationStatus = "cancelled"
)

type Consultation struct {
	ID          int64              `json:"id" db:"id"`
	UserID      int64              `json:"user_id" db:"user_id"`
	AdvisorID   int64              `json:"advisor_id" db:"advisor_id"`
	SlotID      int64              `json:"slot_id" db:"slot_id"`
	Status      ConsultationStatus `json:"status" db:"status"`
	MeetingLink *string            `json:"meeting_link,omitempty" db:"meeting_link"`
	EventID     *string            `json:"-" db:"calendar_event_id"`
	Notes       *string            `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`

	SlotDate      time.Time `json:"slot_date,omitempty" db:"-"`
	SlotStart     string    `json:"slot_start,omitempty" db:"-"`
	SlotEnd       string    `json:"slot_end,omitempty" db:"-"`
	CustomerName  string    `json:"customer_name,omitempty" db:"-"`
	CustomerEmail string    `json:"customer_email,omitempty" db:"-"`
	AdvisorName   string    `json:"advisor_name,omitempty" db:"-"`
	AdvisorEmail  string    `json:"advisor_email,omitempty" db:"-"`
}
