// Package calendar содержит правила расчёта рабочих дней и границ
// расчётного периода (с 6-го числа месяца по 5-е число следующего).
package calendar

import (
	"time"
)

// DateLayout - формат даты ISO (yyyy-MM-dd)
const DateLayout = "2006-01-02"

const (
	// PeriodStartDay - день месяца, с которого начинается период
	PeriodStartDay = 6
	// ClosingDay - последний день периода, в который он закрывается
	ClosingDay = 5
)

// Date приводит момент времени к полуночи UTC той же календарной даты
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает строку в формате yyyy-MM-dd
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate форматирует дату в yyyy-MM-dd
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CountBusinessDays считает даты с понедельника по пятницу в [start, end].
// Праздники не учитываются. Если start > end, возвращается 0.
func CountBusinessDays(start, end time.Time) int {
	start, end = Date(start), Date(end)
	if start.After(end) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

// CurrentPeriodStart возвращает начало периода, в который попадает today
func CurrentPeriodStart(today time.Time) time.Time {
	y, m, d := today.Date()
	if d < PeriodStartDay {
		m--
	}
	// time.Date нормализует нулевой месяц в декабрь предыдущего года
	return time.Date(y, m, PeriodStartDay, 0, 0, 0, 0, time.UTC)
}

// CurrentPeriodEnd возвращает конец периода, в который попадает today
func CurrentPeriodEnd(today time.Time) time.Time {
	return PeriodEnd(CurrentPeriodStart(today))
}

// IsClosingDay сообщает, является ли today днём закрытия периода
func IsClosingDay(today time.Time) bool {
	return today.Day() == ClosingDay
}

// PeriodEnd возвращает конец месячного периода: start + 1 месяц - 1 день
func PeriodEnd(start time.Time) time.Time {
	return Date(start).AddDate(0, 1, -1)
}

// IsValidPeriod проверяет, что start приходится на 6-е число,
// а end равен PeriodEnd(start)
func IsValidPeriod(start, end time.Time) bool {
	if start.Day() != PeriodStartDay {
		return false
	}
	return PeriodEnd(start).Equal(Date(end))
}

// Contains сообщает, попадает ли date в [start, end] включительно
func Contains(start, end, date time.Time) bool {
	date = Date(date)
	return !date.Before(Date(start)) && !date.After(Date(end))
}
