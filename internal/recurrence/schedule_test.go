package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyAnchoredToFirst(t *testing.T) {
	s := Schedule{Frequency: FrequencyMonthly, DayOfMonth: 1, EndType: EndNever}
	next, ok := s.NextDate(date(2024, time.January, 1))
	require.True(t, ok)
	require.Equal(t, date(2024, time.February, 1), next)
}

func TestMonthlyClampsShortMonths(t *testing.T) {
	s := Schedule{Frequency: FrequencyMonthly, DayOfMonth: 31, EndType: EndNever}
	next, ok := s.NextDate(date(2024, time.January, 31))
	require.True(t, ok)
	require.Equal(t, date(2024, time.February, 29), next) // 2024 is a leap year

	next, ok = s.NextDate(next)
	require.True(t, ok)
	require.Equal(t, date(2024, time.March, 31), next) // anchor restores after the short month
}

func TestDailyWeeklyYearly(t *testing.T) {
	daily := Schedule{Frequency: FrequencyDaily, EndType: EndNever}
	next, ok := daily.NextDate(date(2024, time.March, 10))
	require.True(t, ok)
	require.Equal(t, date(2024, time.March, 11), next)

	weekly := Schedule{Frequency: FrequencyWeekly, EndType: EndNever}
	next, ok = weekly.NextDate(date(2024, time.March, 10))
	require.True(t, ok)
	require.Equal(t, date(2024, time.March, 17), next)

	yearly := Schedule{Frequency: FrequencyYearly, Month: time.June, DayOfMonth: 15, EndType: EndNever}
	next, ok = yearly.NextDate(date(2024, time.June, 15))
	require.True(t, ok)
	require.Equal(t, date(2025, time.June, 15), next)
}

func TestCustomInterval(t *testing.T) {
	s := Schedule{
		Frequency:     FrequencyCustom,
		IntervalType:  IntervalWeek,
		IntervalValue: 2,
		EndType:       EndNever,
	}
	next, ok := s.NextDate(date(2024, time.March, 1))
	require.True(t, ok)
	require.Equal(t, date(2024, time.March, 15), next)

	months := Schedule{
		Frequency:     FrequencyCustom,
		IntervalType:  IntervalMonth,
		IntervalValue: 3,
		EndType:       EndNever,
	}
	next, ok = months.NextDate(date(2024, time.January, 31))
	require.True(t, ok)
	require.Equal(t, date(2024, time.April, 30), next)
}

func TestEndAfterTerminates(t *testing.T) {
	s := Schedule{
		Frequency:        FrequencyMonthly,
		DayOfMonth:       1,
		EndType:          EndAfter,
		MaxOccurrences:   3,
		OccurrencesCount: 3,
	}
	_, ok := s.NextDate(date(2024, time.March, 1))
	require.False(t, ok)

	s.OccurrencesCount = 2
	next, ok := s.NextDate(date(2024, time.March, 1))
	require.True(t, ok)
	require.Equal(t, date(2024, time.April, 1), next)
}

func TestEndOnTerminates(t *testing.T) {
	s := Schedule{
		Frequency:  FrequencyMonthly,
		DayOfMonth: 1,
		EndType:    EndOn,
		EndDate:    date(2024, time.March, 1),
	}
	next, ok := s.NextDate(date(2024, time.February, 1))
	require.True(t, ok)
	require.Equal(t, date(2024, time.March, 1), next)

	_, ok = s.NextDate(next)
	require.False(t, ok)
}

func TestEndNeverNeverTerminatesFromEndCondition(t *testing.T) {
	s := Schedule{Frequency: FrequencyDaily, EndType: EndNever}
	cursor := date(2024, time.January, 1)
	for i := 0; i < 1000; i++ {
		next, ok := s.NextDate(cursor)
		require.True(t, ok)
		require.True(t, next.After(cursor))
		cursor = next
	}
}

func TestZeroLastFallsBackToStartDate(t *testing.T) {
	s := Schedule{
		Frequency:  FrequencyMonthly,
		DayOfMonth: 1,
		EndType:    EndNever,
		StartDate:  date(2024, time.January, 1),
	}
	next, ok := s.NextDate(time.Time{})
	require.True(t, ok)
	require.Equal(t, date(2024, time.February, 1), next)
}

func TestNextDueDateAddsPaymentTerms(t *testing.T) {
	s := Schedule{Frequency: FrequencyMonthly, DayOfMonth: 1, EndType: EndNever}
	due, ok := s.NextDueDate(date(2024, time.January, 1), 14)
	require.True(t, ok)
	require.Equal(t, date(2024, time.February, 15), due)

	due, ok = s.NextDueDate(date(2024, time.January, 1), 0)
	require.True(t, ok)
	require.Equal(t, date(2024, time.February, 1), due)
}
