package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Frequency is the unit of a recurrence interval
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// IsValid returns true for known frequencies
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringStatus controls whether a series still generates transactions
type RecurringStatus string

const (
	RecurringStatusActive    RecurringStatus = "ACTIVE"
	RecurringStatusPaused    RecurringStatus = "PAUSED"
	RecurringStatusCompleted RecurringStatus = "COMPLETED"
)

// Schedule describes when a series falls due
type Schedule struct {
	Frequency Frequency
	Interval  int
	StartDate time.Time
	EndDate   *time.Time
}

func (s Schedule) validate() error {
	if !s.Frequency.IsValid() {
		return shared.NewDomainErrorf("INVALID_FREQUENCY", "Invalid frequency %q", s.Frequency)
	}
	if s.Interval < 1 {
		return shared.NewDomainError("INVALID_INTERVAL", "Interval must be at least 1")
	}
	if s.StartDate.IsZero() {
		return shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}
	if s.EndDate != nil && s.EndDate.Before(s.StartDate) {
		return shared.NewDomainError("INVALID_END_DATE", "End date cannot be before start date")
	}
	return nil
}

// Advance returns the due date one step after prev. Monthly and yearly steps
// land on the start date's day, clamped to the length of the target month
func (s Schedule) Advance(prev time.Time) time.Time {
	switch s.Frequency {
	case FrequencyDaily:
		return prev.AddDate(0, 0, s.Interval)
	case FrequencyWeekly:
		return prev.AddDate(0, 0, 7*s.Interval)
	case FrequencyMonthly:
		return addMonthsClamped(prev, s.Interval, s.StartDate.Day())
	case FrequencyYearly:
		return addMonthsClamped(prev, 12*s.Interval, s.StartDate.Day())
	}
	return prev.AddDate(0, 0, 1)
}

// NextAfter steps from prev until the date is strictly after now
func (s Schedule) NextAfter(prev, now time.Time) time.Time {
	next := prev
	for !next.After(now) {
		next = s.Advance(next)
	}
	return next
}

func addMonthsClamped(t time.Time, months, anchorDay int) time.Time {
	y, m, _ := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := min(anchorDay, daysIn(first.Year(), first.Month(), t.Location()))
	return first.AddDate(0, 0, day-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// RecurringTemplate is what each generated transaction copies
type RecurringTemplate struct {
	Type          TransactionType
	Description   string
	Amount        decimal.Decimal
	CategoryID    *uuid.UUID
	PaymentMethod PaymentMethod
}

func (t RecurringTemplate) normalize() (RecurringTemplate, error) {
	if !t.Type.IsValid() {
		return t, shared.NewDomainErrorf("INVALID_TYPE", "Invalid transaction type %q", t.Type)
	}
	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		return t, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if !t.Amount.IsPositive() {
		return t, shared.NewDomainError("INVALID_AMOUNT", "Amount must be greater than zero")
	}
	if !t.PaymentMethod.IsValid() {
		return t, shared.NewDomainErrorf("INVALID_PAYMENT_METHOD", "Invalid payment method %q", t.PaymentMethod)
	}
	t.Amount = t.Amount.Round(2)
	return t, nil
}

// RecurringTransaction generates a pending transaction every period
type RecurringTransaction struct {
	shared.TenantAggregateRoot
	RecurringTemplate
	Schedule
	Status          RecurringStatus
	NextDueDate     time.Time
	LastGeneratedAt *time.Time
	Occurrences     int
}

// NewRecurringTransaction creates an active series whose first due date is the start date
func NewRecurringTransaction(tenantID uuid.UUID, tmpl RecurringTemplate, sched Schedule) (*RecurringTransaction, error) {
	tmpl, err := tmpl.normalize()
	if err != nil {
		return nil, err
	}
	if err := sched.validate(); err != nil {
		return nil, err
	}
	return &RecurringTransaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		RecurringTemplate:   tmpl,
		Schedule:            sched,
		Status:              RecurringStatusActive,
		NextDueDate:         sched.StartDate,
	}, nil
}

// Update edits the template and the end date. The cadence is fixed once created
func (r *RecurringTransaction) Update(tmpl RecurringTemplate, endDate *time.Time) error {
	if r.Status == RecurringStatusCompleted {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot edit a completed series")
	}
	tmpl.Type = r.Type
	tmpl, err := tmpl.normalize()
	if err != nil {
		return err
	}
	if endDate != nil && endDate.Before(r.StartDate) {
		return shared.NewDomainError("INVALID_END_DATE", "End date cannot be before start date")
	}
	r.RecurringTemplate = tmpl
	r.EndDate = endDate
	r.Touch()
	return nil
}

// Pause stops generation
func (r *RecurringTransaction) Pause() error {
	if r.Status != RecurringStatusActive {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot pause a %s series", r.Status)
	}
	r.Status = RecurringStatusPaused
	r.Touch()
	return nil
}

// Resume restarts generation and moves the next due date past now
func (r *RecurringTransaction) Resume(now time.Time) error {
	if r.Status != RecurringStatusPaused {
		return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot resume a %s series", r.Status)
	}
	r.Status = RecurringStatusActive
	if !r.NextDueDate.After(now) {
		r.NextDueDate = r.NextAfter(r.NextDueDate, now)
	}
	r.completeIfEnded()
	r.Touch()
	return nil
}

// Complete ends the series
func (r *RecurringTransaction) Complete() error {
	if r.Status == RecurringStatusCompleted {
		return shared.NewDomainError(shared.CodeInvalidState, "Series is already completed")
	}
	r.Status = RecurringStatusCompleted
	r.Touch()
	return nil
}

// IsDue reports whether a transaction should be generated at now
func (r *RecurringTransaction) IsDue(now time.Time) bool {
	return r.Status == RecurringStatusActive && !r.NextDueDate.After(now)
}

// Generate creates the pending transaction for the current due date, then moves
// the due date past now. It returns nil when the series is not due
func (r *RecurringTransaction) Generate(now time.Time) (*Transaction, error) {
	if !r.IsDue(now) {
		return nil, nil
	}
	if r.EndDate != nil && r.NextDueDate.After(*r.EndDate) {
		r.Status = RecurringStatusCompleted
		r.Touch()
		return nil, nil
	}
	t, err := NewTransaction(r.TenantID, r.Type, TransactionDetails{
		Description:   r.Description,
		Amount:        r.Amount,
		DueDate:       r.NextDueDate,
		PaymentMethod: r.PaymentMethod,
		CategoryID:    r.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	id := r.ID
	t.RecurringTransactionID = &id
	t.CreatedBy = r.CreatedBy

	r.Occurrences++
	r.LastGeneratedAt = &now
	r.NextDueDate = r.NextAfter(r.NextDueDate, now)
	r.completeIfEnded()
	r.Touch()
	return t, nil
}

func (r *RecurringTransaction) completeIfEnded() {
	if r.EndDate != nil && r.NextDueDate.After(*r.EndDate) {
		r.Status = RecurringStatusCompleted
	}
}
