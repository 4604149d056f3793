// Package format renders order data for people: status labels, filter
// tokens, coarse relative ages and money.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FilterAll is the label that clears the status filter.
const FilterAll = "All"

// StatusLabel turns a snake_case status token into a title-cased label,
// e.g. "in_progress" becomes "In Progress". Unknown tokens follow the same rule.
func StatusLabel(token string) string {
	words := strings.Split(token, "_")
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

// FilterToken maps a filter label onto the status token the list endpoint
// expects. "All" and the empty label mean no filter.
func FilterToken(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, FilterAll) {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

type unit struct {
	name    string
	seconds int64
}

var units = []unit{
	{"year", 31536000},
	{"month", 2592000},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// TimeAgo describes how long before now t happened using the largest whole
// unit, or "just now" under a minute. Months and years are fixed-width
// approximations (30 and 365 days).
func TimeAgo(now, t time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	for _, u := range units {
		n := seconds / u.seconds
		if n < 1 {
			continue
		}
		if n == 1 {
			return fmt.Sprintf("1 %s ago", u.name)
		}
		return fmt.Sprintf("%d %ss ago", n, u.name)
	}
	return "just now"
}

// ItemFallbackLabel is shown when a menu item's name cannot be resolved.
func ItemFallbackLabel(menuItemID int64) string {
	return fmt.Sprintf("Item #%d", menuItemID)
}

// Money renders a currency amount with two decimals.
func Money(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Greeting picks a salutation for the given hour of day.
func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Good Morning"
	case hour < 18:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}
