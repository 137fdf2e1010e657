package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// nowFunc is swapped in tests to pin relative dates
var nowFunc = time.Now

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoDateRegex  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s*(hour|hours|day|days|week|weeks)$`)
)

// ParseDueDate parses the due date formats accepted from chat and from the model
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2024")
// - yyyy-mm-dd or RFC 3339 (e.g., "2024-12-15", "2024-12-15T09:00:00Z")
// - X days, X hours, X weeks (e.g., "3 days", "24 hours")
// - today, tomorrow
func ParseDueDate(input string) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	if dueDate, err := parseDateFormat(input); err == nil {
		return dueDate, nil
	}

	if dueDate, err := parseISODate(input); err == nil {
		return dueDate, nil
	}

	if dueDate, err := parseRelativeTime(input); err == nil {
		return dueDate, nil
	}

	return nil, fmt.Errorf("invalid date format %q. Use: dd/mm/yyyy, yyyy-mm-dd, X days, X hours, X weeks, today or tomorrow", input)
}

// parseDateFormat parses dd/mm/yyyy format
func parseDateFormat(input string) (*time.Time, error) {
	matches := dateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	return buildDate(year, month, day)
}

// parseISODate parses yyyy-mm-dd and full RFC 3339 timestamps
func parseISODate(input string) (*time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, input); err == nil {
		return &ts, nil
	}

	matches := isoDateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid ISO date")
	}

	year, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	day, _ := strconv.Atoi(matches[3])

	return buildDate(year, month, day)
}

// buildDate validates the parts and returns the end of that day in local time
func buildDate(year, month, day int) (*time.Time, error) {
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, fmt.Errorf("year must be between 2000 and 2100")
	}

	dueDate := time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.Local)

	// Rejects dates that time.Date normalized, e.g. 31/02
	if dueDate.Day() != day || dueDate.Month() != time.Month(month) || dueDate.Year() != year {
		return nil, fmt.Errorf("invalid date")
	}

	return &dueDate, nil
}

// parseRelativeTime parses "3 days", "24 hours", "today", "tomorrow"
func parseRelativeTime(input string) (*time.Time, error) {
	input = strings.ToLower(input)
	now := nowFunc()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := 23*time.Hour + 59*time.Minute + 59*time.Second

	switch input {
	case "today":
		dueDate := today.Add(endOfDay)
		return &dueDate, nil
	case "tomorrow":
		dueDate := today.AddDate(0, 0, 1).Add(endOfDay)
		return &dueDate, nil
	}

	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "hour", "hours":
		if amount < 1 || amount > 8760 {
			return nil, fmt.Errorf("hours must be between 1 and 8760")
		}
		dueDate := now.Add(time.Duration(amount) * time.Hour)
		return &dueDate, nil

	case "day", "days":
		if amount < 1 || amount > 365 {
			return nil, fmt.Errorf("days must be between 1 and 365")
		}
		dueDate := today.AddDate(0, 0, amount).Add(endOfDay)
		return &dueDate, nil

	case "week", "weeks":
		if amount < 1 || amount > 52 {
			return nil, fmt.Errorf("weeks must be between 1 and 52")
		}
		dueDate := today.AddDate(0, 0, amount*7).Add(endOfDay)
		return &dueDate, nil

	default:
		return nil, fmt.Errorf("unsupported time unit")
	}
}

// FormatDueDate formats a due date for display
func FormatDueDate(dueDate *time.Time) string {
	if dueDate == nil {
		return "No date"
	}

	now := nowFunc()

	// Calendar days, not 24h windows
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, now.Location())
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	dateStr := dueDate.Format("02/01/2006")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("Due %s", dateStr)
	}
}
