package recurrence

import "time"

// Frequency enumerates how often a recurring invoice fires.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
	FrequencyCustom  Frequency = "CUSTOM"
)

// IntervalType is the unit of a custom interval.
type IntervalType string

const (
	IntervalDay   IntervalType = "DAY"
	IntervalWeek  IntervalType = "WEEK"
	IntervalMonth IntervalType = "MONTH"
	IntervalYear  IntervalType = "YEAR"
)

// EndType is how the schedule terminates.
type EndType string

const (
	EndNever EndType = "NEVER"
	EndAfter EndType = "AFTER"
	EndOn    EndType = "ON"
)

// Schedule captures a recurring invoice cadence. LastDate and
// OccurrencesCount are cursors advanced by the caller as invoices
// are generated.
type Schedule struct {
	Frequency        Frequency
	IntervalType     IntervalType
	IntervalValue    int
	DayOfMonth       int // anchor for monthly/yearly, clamped to short months
	Month            time.Month
	DayOfWeek        time.Weekday
	EndType          EndType
	MaxOccurrences   int
	EndDate          time.Time
	StartDate        time.Time
	LastDate         time.Time
	OccurrencesCount int
}

// NextDate computes the occurrence after last, or ok=false when the
// end condition has been reached. Pure date math; the caller supplies
// last (typically Schedule.LastDate, or StartDate before the first
// invoice exists).
func (s Schedule) NextDate(last time.Time) (time.Time, bool) {
	if last.IsZero() {
		last = s.StartDate
	}
	if s.EndType == EndAfter && s.OccurrencesCount >= s.MaxOccurrences {
		return time.Time{}, false
	}

	var next time.Time
	switch s.Frequency {
	case FrequencyDaily:
		next = last.AddDate(0, 0, 1)
	case FrequencyWeekly:
		next = last.AddDate(0, 0, 7)
	case FrequencyMonthly:
		next = addMonthsClamped(last, 1, s.DayOfMonth)
	case FrequencyYearly:
		next = addYearsClamped(last, 1, s.Month, s.DayOfMonth)
	case FrequencyCustom:
		interval := s.IntervalValue
		if interval <= 0 {
			interval = 1
		}
		switch s.IntervalType {
		case IntervalDay:
			next = last.AddDate(0, 0, interval)
		case IntervalWeek:
			next = last.AddDate(0, 0, 7*interval)
		case IntervalMonth:
			next = addMonthsClamped(last, interval, s.DayOfMonth)
		case IntervalYear:
			next = addYearsClamped(last, interval, s.Month, s.DayOfMonth)
		default:
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}

	if s.EndType == EndOn && !s.EndDate.IsZero() && next.After(s.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

// NextDueDate is the next occurrence shifted by payment terms, or the
// occurrence itself when no terms are configured.
func (s Schedule) NextDueDate(last time.Time, paymentTermDays int) (time.Time, bool) {
	next, ok := s.NextDate(last)
	if !ok {
		return time.Time{}, false
	}
	if paymentTermDays <= 0 {
		return next, true
	}
	return next.AddDate(0, 0, paymentTermDays), true
}

// addMonthsClamped advances by months keeping the anchor day-of-month,
// clamping to the target month's length instead of letting AddDate
// normalise Jan 31 into Mar 2.
func addMonthsClamped(t time.Time, months, anchorDay int) time.Time {
	year, month, day := t.Date()
	if anchorDay > 0 {
		day = anchorDay
	}
	targetMonth := time.Month(int(month) + months)
	first := time.Date(year, targetMonth, 1, 0, 0, 0, 0, t.Location())
	if day > daysInMonth(first) {
		day = daysInMonth(first)
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func addYearsClamped(t time.Time, years int, anchorMonth time.Month, anchorDay int) time.Time {
	year, month, day := t.Date()
	if anchorMonth > 0 {
		month = anchorMonth
	}
	if anchorDay > 0 {
		day = anchorDay
	}
	first := time.Date(year+years, month, 1, 0, 0, 0, 0, t.Location())
	if day > daysInMonth(first) {
		day = daysInMonth(first)
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
