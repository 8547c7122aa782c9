// Package timeline orders dated records of one subject chronologically,
// groups them by calendar month and by sub-category (pose, exercise).
package timeline

import (
	"sort"
	"time"
)

const monthKeyLayout = "2006-01"

// Dated is anything placed on a subject's timeline.
type Dated interface {
	Date() time.Time
}

// Series is a descending-by-date view over a set of records.
type Series[T Dated] struct {
	// Ordered holds the records newest first. Equal dates keep insertion order.
	Ordered []T `json:"ordered"`
	// ByMonth groups the records by calendar month, keyed YYYY-MM.
	ByMonth map[string][]T `json:"byMonth"`
	// Months are the ByMonth keys, newest first.
	Months []string `json:"months"`
}

// Organize never modifies the input slice.
func Organize[T Dated](items []T) Series[T] {
	ordered := Descending(items)

	byMonth := make(map[string][]T)
	months := make([]string, 0)
	for _, item := range ordered {
		key := MonthKey(item.Date())
		if _, ok := byMonth[key]; !ok {
			months = append(months, key)
		}
		byMonth[key] = append(byMonth[key], item)
	}

	return Series[T]{
		Ordered: ordered,
		ByMonth: byMonth,
		Months:  months,
	}
}

// Current returns the most recent record.
func (s Series[T]) Current() (T, bool) {
	var zero T
	if len(s.Ordered) == 0 {
		return zero, false
	}
	return s.Ordered[0], true
}

// Baseline returns the first (oldest) record.
func (s Series[T]) Baseline() (T, bool) {
	var zero T
	if len(s.Ordered) == 0 {
		return zero, false
	}
	return s.Ordered[len(s.Ordered)-1], true
}

// Previous returns the record right before the current one.
func (s Series[T]) Previous() (T, bool) {
	var zero T
	if len(s.Ordered) < 2 {
		return zero, false
	}
	return s.Ordered[1], true
}

func (s Series[T]) Len() int {
	return len(s.Ordered)
}

// Descending returns a copy of items, newest first, stable for equal dates.
func Descending[T Dated](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date().After(out[j].Date())
	})
	return out
}

// Ascending returns a copy of items, oldest first, stable for equal dates.
func Ascending[T Dated](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date().Before(out[j].Date())
	})
	return out
}

// GroupBy splits items by the given key, each group ordered newest first.
func GroupBy[T Dated](items []T, key func(T) string) map[string][]T {
	groups := make(map[string][]T)
	for _, item := range items {
		k := key(item)
		groups[k] = append(groups[k], item)
	}
	for k, group := range groups {
		groups[k] = Descending(group)
	}
	return groups
}

// IsAscending reports whether items are ordered oldest first (equal dates allowed).
func IsAscending[T Dated](items []T) bool {
	for i := 1; i < len(items); i++ {
		if items[i].Date().Before(items[i-1].Date()) {
			return false
		}
	}
	return true
}

func MonthKey(t time.Time) string {
	return t.UTC().Format(monthKeyLayout)
}

// DaysBetween returns the number of calendar days from a to b (UTC dates).
// It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
