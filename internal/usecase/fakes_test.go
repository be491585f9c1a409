package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/Keganchiaa/fyp-bank/internal/calendar"
	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
	"github.com/Keganchiaa/fyp-bank/pkg/xerrors"
)

// In-memory fakes for the repository interfaces. They keep the same error
// contracts as the pgx implementations so usecases cannot tell them apart.

type fakeUserRepo struct {
	seq   int64
	users map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return xerrors.ErrUserAlreadyExists
		}
	}
	f.seq++
	u.ID = f.seq
	u.CreatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string, excludeID int64) (bool, error) {
	for _, u := range f.users {
		if u.ID == excludeID {
			continue
		}
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return xerrors.ErrUserNotFound
	}
	cp := *u
	cp.PasswordHash = f.users[u.ID].PasswordHash
	cp.CalendarTokens = f.users[u.ID].CalendarTokens
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) UpdateCalendarTokens(_ context.Context, id int64, tokens []byte) error {
	u, ok := f.users[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.CalendarTokens = tokens
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return xerrors.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeProductRepo struct {
	seq      int64
	products map[int64]*domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int64]*domain.Product{}}
}

func (f *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	f.seq++
	p.ID = f.seq
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, xerrors.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(f.products))
	for _, p := range f.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return xerrors.ErrProductNotFound
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return xerrors.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeAccountRepo struct {
	seq      int64
	accounts map[int64]*domain.Account
	kyc      map[int64]*domain.KYCDocument // keyed by account id
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: map[int64]*domain.Account{},
		kyc:      map[int64]*domain.KYCDocument{},
	}
}

func (f *fakeAccountRepo) CreateWithKYC(_ context.Context, a *domain.Account, k *domain.KYCDocument) error {
	f.seq++
	a.ID = f.seq
	cp := *a
	f.accounts[a.ID] = &cp
	kcp := *k
	kcp.AccountID = &a.ID
	f.kyc[a.ID] = &kcp
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, xerrors.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) ListByUser(_ context.Context, userID int64) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccountRepo) ListPending(_ context.Context) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range f.accounts {
		if a.Status == domain.StatusPending {
			cp := *a
			if k, ok := f.kyc[a.ID]; ok {
				kcp := *k
				cp.KYC = &kcp
			}
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccountRepo) HasLiveApplication(_ context.Context, userID, productID int64) (bool, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.ProductID == productID && a.Status != domain.StatusRejected {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountRepo) HasActiveSavings(_ context.Context, userID int64) (bool, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.Status == domain.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountRepo) SetStatus(_ context.Context, id int64, status domain.ApplicationStatus, kyc domain.KYCStatus) error {
	a, ok := f.accounts[id]
	if !ok {
		return xerrors.ErrAccountNotFound
	}
	a.Status = status
	if k, ok := f.kyc[id]; ok {
		k.Status = kyc
	}
	return nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.accounts[id]; !ok {
		return xerrors.ErrAccountNotFound
	}
	delete(f.accounts, id)
	delete(f.kyc, id)
	return nil
}

type fakeCardRepo struct {
	seq   int64
	cards map[int64]*domain.CreditCard
	kyc   map[int64]*domain.KYCDocument
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: map[int64]*domain.CreditCard{}, kyc: map[int64]*domain.KYCDocument{}}
}

func (f *fakeCardRepo) CreateWithKYC(_ context.Context, c *domain.CreditCard, k *domain.KYCDocument) error {
	f.seq++
	c.ID = f.seq
	cp := *c
	f.cards[c.ID] = &cp
	kcp := *k
	kcp.CardID = &c.ID
	f.kyc[c.ID] = &kcp
	return nil
}

func (f *fakeCardRepo) GetByID(_ context.Context, id int64) (*domain.CreditCard, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCardRepo) ListByUser(_ context.Context, userID int64) ([]*domain.CreditCard, error) {
	var out []*domain.CreditCard
	for _, c := range f.cards {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCardRepo) ListPending(_ context.Context) ([]*domain.CreditCard, error) {
	var out []*domain.CreditCard
	for _, c := range f.cards {
		if c.Status == domain.StatusPending {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCardRepo) HasLiveApplication(_ context.Context, userID, productID int64) (bool, error) {
	for _, c := range f.cards {
		if c.UserID == userID && c.ProductID == productID && c.Status != domain.StatusRejected {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCardRepo) Approve(_ context.Context, id int64, approvedLimit float64) error {
	c, ok := f.cards[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	c.CreditLimit = approvedLimit
	c.Status = domain.StatusActive
	if k, ok := f.kyc[id]; ok {
		k.Status = domain.KYCVerified
	}
	return nil
}

func (f *fakeCardRepo) SetStatus(_ context.Context, id int64, status domain.ApplicationStatus, kyc domain.KYCStatus) error {
	c, ok := f.cards[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	c.Status = status
	if k, ok := f.kyc[id]; ok {
		k.Status = kyc
	}
	return nil
}

func (f *fakeCardRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.cards[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.cards, id)
	delete(f.kyc, id)
	return nil
}

// fakeLedgerRepo applies updates atomically like the pgx version: all rows
// or none.
type fakeLedgerRepo struct {
	accounts *fakeAccountRepo
	seq      int64
	entries  []*domain.Transaction
}

func newFakeLedgerRepo(accounts *fakeAccountRepo) *fakeLedgerRepo {
	return &fakeLedgerRepo{accounts: accounts}
}

func (f *fakeLedgerRepo) Apply(_ context.Context, updates []repository.BalanceUpdate, entries []*domain.Transaction) error {
	for _, u := range updates {
		if _, ok := f.accounts.accounts[u.AccountID]; !ok {
			return xerrors.ErrAccountNotFound
		}
	}
	for _, u := range updates {
		f.accounts.accounts[u.AccountID].Balance = u.NewBalance
	}
	for _, e := range entries {
		f.seq++
		e.ID = f.seq
		e.CreatedAt = time.Now()
		cp := *e
		f.entries = append(f.entries, &cp)
	}
	return nil
}

func (f *fakeLedgerRepo) ListByUser(_ context.Context, userID int64) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, e := range f.entries {
		if a, ok := f.accounts.accounts[e.AccountID]; ok && a.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeOTPRepo struct {
	seq    int64
	tokens []*domain.OTPToken
}

func (f *fakeOTPRepo) InvalidateUnused(_ context.Context, userID int64, purpose domain.OTPPurpose) error {
	for _, t := range f.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			t.IsUsed = true
		}
	}
	return nil
}

func (f *fakeOTPRepo) Create(_ context.Context, t *domain.OTPToken) error {
	f.seq++
	t.ID = f.seq
	t.CreatedAt = time.Now()
	cp := *t
	f.tokens = append(f.tokens, &cp)
	return nil
}

func (f *fakeOTPRepo) FindUnused(_ context.Context, userID int64, purpose domain.OTPPurpose, code string) (*domain.OTPToken, error) {
	for i := len(f.tokens) - 1; i >= 0; i-- {
		t := f.tokens[i]
		if t.UserID == userID && t.Purpose == purpose && t.Code == code && !t.IsUsed {
			cp := *t
			return &cp, nil
		}
	}
	return nil, xerrors.ErrInvalidOTP
}

func (f *fakeOTPRepo) MarkUsed(_ context.Context, id int64) error {
	for _, t := range f.tokens {
		if t.ID == id {
			t.IsUsed = true
			return nil
		}
	}
	return xerrors.ErrInvalidOTP
}

func (f *fakeOTPRepo) latest(userID int64, purpose domain.OTPPurpose) *domain.OTPToken {
	for i := len(f.tokens) - 1; i >= 0; i-- {
		t := f.tokens[i]
		if t.UserID == userID && t.Purpose == purpose {
			return t
		}
	}
	return nil
}

type pendingKey struct {
	userID  int64
	purpose domain.OTPPurpose
}

type fakePendingRepo struct {
	seq     int64
	actions map[pendingKey]*domain.PendingAction
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{actions: map[pendingKey]*domain.PendingAction{}}
}

func (f *fakePendingRepo) Upsert(_ context.Context, p *domain.PendingAction) error {
	f.seq++
	p.ID = f.seq
	p.CreatedAt = time.Now()
	cp := *p
	f.actions[pendingKey{p.UserID, p.Purpose}] = &cp
	return nil
}

func (f *fakePendingRepo) Get(_ context.Context, userID int64, purpose domain.OTPPurpose) (*domain.PendingAction, error) {
	p, ok := f.actions[pendingKey{userID, purpose}]
	if !ok {
		return nil, xerrors.ErrOTPSessionExpired
	}
	cp := *p
	return &cp, nil
}

func (f *fakePendingRepo) Delete(_ context.Context, userID int64, purpose domain.OTPPurpose) error {
	delete(f.actions, pendingKey{userID, purpose})
	return nil
}

type fakeSlotRepo struct {
	seq   int64
	slots map[int64]*domain.TimeSlot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: map[int64]*domain.TimeSlot{}}
}

func (f *fakeSlotRepo) Create(_ context.Context, s *domain.TimeSlot) error {
	for _, existing := range f.slots {
		if existing.AdvisorID == s.AdvisorID && existing.Date.Equal(s.Date) && existing.StartTime == s.StartTime {
			return xerrors.ErrDuplicateSlot
		}
	}
	f.seq++
	s.ID = f.seq
	s.CreatedAt = time.Now()
	cp := *s
	f.slots[s.ID] = &cp
	return nil
}

func (f *fakeSlotRepo) GetByID(_ context.Context, id int64) (*domain.TimeSlot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSlotRepo) Exists(_ context.Context, advisorID int64, date time.Time, start string, excludeID int64) (bool, error) {
	for _, s := range f.slots {
		if s.ID == excludeID {
			continue
		}
		if s.AdvisorID == advisorID && s.Date.Equal(date) && s.StartTime == start {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSlotRepo) ListUpcomingByAdvisor(_ context.Context, advisorID int64, from time.Time) ([]*domain.TimeSlot, error) {
	var out []*domain.TimeSlot
	for _, s := range f.slots {
		if s.AdvisorID == advisorID && !s.Date.Before(from.Truncate(24*time.Hour)) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSlotRepo) ListOpen(_ context.Context, from time.Time) ([]*domain.TimeSlot, error) {
	var out []*domain.TimeSlot
	for _, s := range f.slots {
		if !s.IsBooked && !s.Date.Before(from.Truncate(24*time.Hour)) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSlotRepo) Update(_ context.Context, s *domain.TimeSlot) error {
	if _, ok := f.slots[s.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *s
	f.slots[s.ID] = &cp
	return nil
}

func (f *fakeSlotRepo) SetBooked(_ context.Context, id int64, booked bool) error {
	s, ok := f.slots[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	s.IsBooked = booked
	return nil
}

func (f *fakeSlotRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.slots[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.slots, id)
	return nil
}

type fakeConsultationRepo struct {
	slots         *fakeSlotRepo
	seq           int64
	consultations map[int64]*domain.Consultation
}

func newFakeConsultationRepo(slots *fakeSlotRepo) *fakeConsultationRepo {
	return &fakeConsultationRepo{slots: slots, consultations: map[int64]*domain.Consultation{}}
}

func (f *fakeConsultationRepo) Book(_ context.Context, c *domain.Consultation) error {
	slot, ok := f.slots.slots[c.SlotID]
	if !ok || slot.IsBooked {
		return xerrors.ErrSlotUnavailable
	}
	slot.IsBooked = true
	f.seq++
	c.ID = f.seq
	c.CreatedAt = time.Now()
	cp := *c
	cp.SlotDate = slot.Date
	cp.SlotStart = slot.StartTime
	cp.SlotEnd = slot.EndTime
	f.consultations[c.ID] = &cp
	return nil
}

func (f *fakeConsultationRepo) GetByID(_ context.Context, id int64) (*domain.Consultation, error) {
	c, ok := f.consultations[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConsultationRepo) ListByCustomer(_ context.Context, userID int64) ([]*domain.Consultation, error) {
	var out []*domain.Consultation
	for _, c := range f.consultations {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeConsultationRepo) ListByAdvisor(_ context.Context, advisorID int64) ([]*domain.Consultation, error) {
	var out []*domain.Consultation
	for _, c := range f.consultations {
		if c.AdvisorID == advisorID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeConsultationRepo) HasBookingAt(_ context.Context, userID int64, date time.Time, start string) (bool, error) {
	for _, c := range f.consultations {
		if c.UserID == userID && c.Status == domain.ConsultationBooked &&
			c.SlotDate.Equal(date) && c.SlotStart == start {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConsultationRepo) Cancel(_ context.Context, id int64) error {
	c, ok := f.consultations[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	c.Status = domain.ConsultationCancelled
	if slot, ok := f.slots.slots[c.SlotID]; ok {
		slot.IsBooked = false
	}
	return nil
}

func (f *fakeConsultationRepo) SetStatus(_ context.Context, id int64, status domain.ConsultationStatus) error {
	c, ok := f.consultations[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeConsultationRepo) UpdateNotes(_ context.Context, id int64, notes string) error {
	c, ok := f.consultations[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	c.Notes = &notes
	return nil
}

func (f *fakeConsultationRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.consultations)), nil
}

func (f *fakeConsultationRepo) CountByStatus(_ context.Context, status domain.ConsultationStatus) (int64, error) {
	var n int64
	for _, c := range f.consultations {
		if c.Status == status {
			n++
		}
	}
	return n, nil
}

// fakeLimiter lets tests flip rate limiting on and off.
type fakeLimiter struct {
	err   error
	calls int
}

func (f *fakeLimiter) CanRequest(context.Context, int64, string) error {
	f.calls++
	return f.err
}

// fakeSender records outbound mail.
type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// fakeCalendar is a scripted calendar provider.
type fakeCalendar struct {
	createErr error
	created   int
	deleted   []string
	link      string
}

func (f *fakeCalendar) AuthURL(state string) string { return "https://calendar.test/auth?state=" + state }

func (f *fakeCalendar) Exchange(context.Context, string) (*calendar.TokenSet, error) {
	return &calendar.TokenSet{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, tokens *calendar.TokenSet, _ string, _, _ time.Time, _ []string) (*calendar.Event, *calendar.TokenSet, error) {
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	f.created++
	link := f.link
	if link == "" {
		link = "https://meet.test/abc"
	}
	return &calendar.Event{ID: "evt-1", MeetingLink: link}, tokens, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, tokens *calendar.TokenSet, eventID string) (*calendar.TokenSet, error) {
	f.deleted = append(f.deleted, eventID)
	return tokens, nil
}
