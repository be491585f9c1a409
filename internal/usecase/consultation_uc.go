package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Keganchiaa/fyp-bank/internal/calendar"
	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/mailer"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

const (
	businessOpenHour  = 9
	businessCloseHour = 17
	slotDuration      = time.Hour
)

// ConsultationUsecase runs the advisor scheduling surface: slot management,
// customer booking with calendar meetings, cancellation and completion.
type ConsultationUsecase struct {
	slots         repository.SlotRepository
	consultations repository.ConsultationRepository
	users         repository.UserRepository
	provider      calendar.Provider
	sender        mailer.Sender
	loc           *time.Location
	now           func() time.Time
}

func NewConsultationUsecase(
	slots repository.SlotRepository,
	consultations repository.ConsultationRepository,
	users repository.UserRepository,
	provider calendar.Provider,
	sender mailer.Sender,
	loc *time.Location,
) *ConsultationUsecase {
	return &ConsultationUsecase{
		slots:         slots,
		consultations: consultations,
		users:         users,
		provider:      provider,
		sender:        sender,
		loc:           loc,
		now:           time.Now,
	}
}

// validateSlot enforces the shared slot rules: one hour, in the future,
// starting on a business hour, no duplicate per advisor.
func (uc *ConsultationUsecase) validateSlot(ctx context.Context, advisorID int64, date time.Time, start string, excludeID int64) (string, error) {
	st, err := time.ParseInLocation("15:04", start, uc.loc)
	if err != nil {
		return "", fmt.Errorf("invalid start time %q", start)
	}
	if st.Hour() < businessOpenHour || st.Hour() > businessCloseHour {
		return "", xerrors.ErrOutsideBusinessHour
	}

	startAt := time.Date(date.Year(), date.Month(), date.Day(), st.Hour(), st.Minute(), 0, 0, uc.loc)
	if startAt.Before(uc.now()) {
		return "", xerrors.ErrSlotInPast
	}

	dup, err := uc.slots.Exists(ctx, advisorID, date, start, excludeID)
	if err != nil {
		return "", err
	}
	if dup {
		return "", xerrors.ErrDuplicateSlot
	}
	return startAt.Add(slotDuration).Format("15:04"), nil
}

func (uc *ConsultationUsecase) CreateSlot(ctx context.Context, advisorID int64, date time.Time, start string) (*domain.TimeSlot, error) {
	end, err := uc.validateSlot(ctx, advisorID, date, start, 0)
	if err != nil {
		return nil, err
	}
	slot := &domain.TimeSlot{
		AdvisorID: advisorID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
	if err := uc.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (uc *ConsultationUsecase) UpdateSlot(ctx context.Context, advisorID, slotID int64, date time.Time, start string) error {
	slot, err := uc.slots.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.AdvisorID != advisorID {
		return xerrors.ErrNotFound
	}
	if slot.IsBooked {
		return xerrors.ErrSlotUnavailable
	}
	end, err := uc.validateSlot(ctx, advisorID, date, start, slotID)
	if err != nil {
		return err
	}
	slot.Date = date
	slot.StartTime = start
	slot.EndTime = end
	return uc.slots.Update(ctx, slot)
}

func (uc *ConsultationUsecase) DeleteSlot(ctx context.Context, advisorID, slotID int64) error {
	slot, err := uc.slots.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.AdvisorID != advisorID {
		return xerrors.ErrNotFound
	}
	if slot.IsBooked {
		return xerrors.ErrSlotUnavailable
	}
	return uc.slots.Delete(ctx, slotID)
}

func (uc *ConsultationUsecase) UpcomingSlots(ctx context.Context, advisorID int64) ([]*domain.TimeSlot, error) {
	return uc.slots.ListUpcomingByAdvisor(ctx, advisorID, uc.now())
}

func (uc *ConsultationUsecase) OpenSlots(ctx context.Context) ([]*domain.TimeSlot, error) {
	return uc.slots.ListOpen(ctx, uc.now())
}

// Book reserves the slot for the customer, creates a calendar meeting on the
// advisor's linked calendar and notifies both parties. Email failures are
// logged, never fatal; the booking itself stands.
func (uc *ConsultationUsecase) Book(ctx context.Context, customer *domain.User, slotID int64) (*domain.Consultation, error) {
	slot, err := uc.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.IsBooked {
		return nil, xerrors.ErrSlotUnavailable
	}
	startAt := slot.StartAt(uc.loc)
	if startAt.Before(uc.now()) {
		return nil, xerrors.ErrSlotInPast
	}

	// One consultation per customer per time, across all advisors.
	conflict, err := uc.consultations.HasBookingAt(ctx, customer.ID, slot.Date, slot.StartTime)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, xerrors.ErrBookingConflict
	}

	advisor, err := uc.users.GetByID(ctx, slot.AdvisorID)
	if err != nil {
		return nil, err
	}
	if !advisor.HasCalendarLinked() {
		return nil, xerrors.ErrCalendarNotLinked
	}

	var tokens calendar.TokenSet
	if err := json.Unmarshal(advisor.CalendarTokens, &tokens); err != nil {
		return nil, fmt.Errorf("decode advisor calendar tokens: %w", err)
	}

	summary := fmt.Sprintf("Consultation: %s / %s", customer.FullName(), advisor.FullName())
	event, fresh, err := uc.provider.CreateEvent(ctx, &tokens, summary, startAt, startAt.Add(slotDuration),
		[]string{customer.Email, advisor.Email})
	if err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}
	uc.persistTokens(ctx, advisor.ID, &tokens, fresh)

	c := &domain.Consultation{
		UserID:    customer.ID,
		AdvisorID: advisor.ID,
		SlotID:    slotID,
		Status:    domain.ConsultationBooked,
	}
	if event.MeetingLink != "" {
		c.MeetingLink = &event.MeetingLink
	}
	if event.ID != "" {
		c.EventID = &event.ID
	}
	if err := uc.consultations.Book(ctx, c); err != nil {
		// Slot was taken in between; drop the orphaned event.
		if _, derr := uc.provider.DeleteEvent(ctx, fresh, event.ID); derr != nil {
			log.Printf("[WARN] remove orphaned calendar event %s: %v", event.ID, derr)
		}
		return nil, err
	}

	link := ""
	if c.MeetingLink != nil {
		link = *c.MeetingLink
	}
	uc.notify(customer.Email, "Consultation confirmed", mailer.BookingBody(customer.FirstName, advisor.FullName(), startAt, link))
	uc.notify(advisor.Email, "New consultation booked", mailer.BookingBody(advisor.FirstName, customer.FullName(), startAt, link))

	return c, nil
}

// Cancel flips the customer's booked consultation to cancelled and reopens
// the slot. The calendar event is removed best-effort.
func (uc *ConsultationUsecase) Cancel(ctx context.Context, userID, consultationID int64) error {
	c, err := uc.consultations.GetByID(ctx, consultationID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return xerrors.ErrNotFound
	}
	if c.Status != domain.ConsultationBooked {
		return xerrors.ErrNotFound
	}
	if err := uc.consultations.Cancel(ctx, consultationID); err != nil {
		return err
	}

	if c.EventID != nil {
		uc.removeEvent(ctx, c.AdvisorID, *c.EventID)
	}

	startAt := time.Date(c.SlotDate.Year(), c.SlotDate.Month(), c.SlotDate.Day(), 0, 0, 0, 0, uc.loc)
	if t, perr := time.ParseInLocation("15:04", c.SlotStart, uc.loc); perr == nil {
		startAt = startAt.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	uc.notify(c.CustomerEmail, "Consultation cancelled", mailer.CancellationBody(c.CustomerName, startAt))
	uc.notify(c.AdvisorEmail, "Consultation cancelled", mailer.CancellationBody(c.AdvisorName, startAt))
	return nil
}

func (uc *ConsultationUsecase) Complete(ctx context.Context, advisorID, consultationID int64) error {
	c, err := uc.consultations.GetByID(ctx, consultationID)
	if err != nil {
		return err
	}
	if c.AdvisorID != advisorID {
		return xerrors.ErrNotFound
	}
	if c.Status != domain.ConsultationBooked {
		return xerrors.ErrNotFound
	}
	return uc.consultations.SetStatus(ctx, consultationID, domain.ConsultationCompleted)
}

func (uc *ConsultationUsecase) SaveNotes(ctx context.Context, advisorID, consultationID int64, notes string) error {
	c, err := uc.consultations.GetByID(ctx, consultationID)
	if err != nil {
		return err
	}
	if c.AdvisorID != advisorID {
		return xerrors.ErrNotFound
	}
	return uc.consultations.UpdateNotes(ctx, consultationID, notes)
}

func (uc *ConsultationUsecase) ListForCustomer(ctx context.Context, userID int64) ([]*domain.Consultation, error) {
	return uc.consultations.ListByCustomer(ctx, userID)
}

func (uc *ConsultationUsecase) ListForAdvisor(ctx context.Context, advisorID int64) ([]*domain.Consultation, error) {
	return uc.consultations.ListByAdvisor(ctx, advisorID)
}

// CalendarAuthURL starts the advisor's OAuth consent flow.
func (uc *ConsultationUsecase) CalendarAuthURL(state string) string {
	return uc.provider.AuthURL(state)
}

// LinkCalendar finishes the OAuth flow and stores the advisor's tokens.
func (uc *ConsultationUsecase) LinkCalendar(ctx context.Context, advisorID int64, code string) error {
	tokens, err := uc.provider.Exchange(ctx, code)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return uc.users.UpdateCalendarTokens(ctx, advisorID, raw)
}

func (uc *ConsultationUsecase) persistTokens(ctx context.Context, advisorID int64, old, fresh *calendar.TokenSet) {
	if fresh == nil || fresh.AccessToken == old.AccessToken {
		return
	}
	raw, err := json.Marshal(fresh)
	if err != nil {
		return
	}
	if err := uc.users.UpdateCalendarTokens(ctx, advisorID, raw); err != nil {
		log.Printf("[WARN] persist refreshed calendar tokens advisor=%d: %v", advisorID, err)
	}
}

func (uc *ConsultationUsecase) removeEvent(ctx context.Context, advisorID int64, eventID string) {
	advisor, err := uc.users.GetByID(ctx, advisorID)
	if err != nil || !advisor.HasCalendarLinked() {
		return
	}
	var tokens calendar.TokenSet
	if err := json.Unmarshal(advisor.CalendarTokens, &tokens); err != nil {
		return
	}
	fresh, err := uc.provider.DeleteEvent(ctx, &tokens, eventID)
	if err != nil {
		log.Printf("[WARN] delete calendar event %s: %v", eventID, err)
		return
	}
	uc.persistTokens(ctx, advisorID, &tokens, fresh)
}

func (uc *ConsultationUsecase) notify(to, subject, body string) {
	if err := uc.sender.Send(to, subject, body); err != nil {
		log.Printf("[WARN] send %q to %s: %v", subject, to, err)
	}
}
