package models

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf drops the clock part of t, keeping t's calendar date, as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the current calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// ParseDate accepts "2006-01-02" and "02.01.2006".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("02.01.2006", s)
}

// NormalizeEmail is the login identity form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// All lists every model for migrations.
func All() []any {
	return []any{
		&Branch{}, &CarCategory{}, &CarStatus{}, &Role{}, &ContractStatus{},
		&Car{}, &Client{}, &Employee{}, &Contract{},
		&User{}, &Session{}, &AuditLog{},
	}
}
