package parser

import (
	"regexp"
	"strings"

	"github.com/balkashynov/taskpilot/internal/models"
)

var (
	// "priority to high", "priority: low", "priority of the login task to high"
	priorityRegex = regexp.MustCompile(`(?i)\bpriority\b(?:[^.;!?]*?\bto\b|\s*:)?\s*(low|medium|high)\b`)
	// "high priority", "low-priority"
	priorityAdjRegex = regexp.MustCompile(`(?i)\b(low|medium|high)[\s-]+priority\b`)
	statusRegex      = regexp.MustCompile(`(?i)\bstatus\b(?:[^.;!?]*?\bto\b|\s*:)?\s*(pending|in[\s_-]?progress|completed|archived)\b`)
	titleRegex       = regexp.MustCompile(`(?i)\btitle\s*(?:to\b|:)?\s*(?:'([^']*)'|"([^"]*)")`)
	descriptionRegex = regexp.MustCompile(`(?i)\bdescription\s*(?:to\b|:)?\s*(?:'([^']*)'|"([^"]*)")`)
	dueRegex         = regexp.MustCompile(`(?i)\bdue(?:\s+date)?\s*(?:to\b|:|on\b|by\b)?\s*(\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}|\d+\s*(?:hours?|days?|weeks?)|today|tomorrow)\b`)
)

var (
	fieldValueRegex    = regexp.MustCompile(`(?i)\b(?:priority|status)\s*(?:to\b|:)?\s*(?:low|medium|high|pending|in[\s_-]?progress|completed|archived)\b`)
	fieldKeywordRegex  = regexp.MustCompile(`(?i)\b(?:priority|status)\b\s*:?`)
	trailingValueRegex = regexp.MustCompile(`(?i)\b(?:to|as)\s+(?:low|medium|high|pending|in[\s_-]?progress|completed|archived)\b`)
)

// updateClauses lists the patterns the resolver strips before looking for
// a title phrase. The wide priority/status rules are not used here: in
// "priority of the login task to high" they would swallow the title.
var updateClauses = []*regexp.Regexp{
	titleRegex,
	descriptionRegex,
	priorityAdjRegex,
	fieldValueRegex,
	fieldKeywordRegex,
	trailingValueRegex,
	dueRegex,
}

// ParseUpdates extracts field changes from a chat message.
// Each rule is independent; only fields with a match are set. An empty
// result means the message carries no recognizable update.
func ParseUpdates(message string) models.TaskFields {
	var fields models.TaskFields

	// Quoted text is taken verbatim and masked so a title like
	// 'High priority review' does not leak into the priority rule
	masked := message
	if text, span, ok := matchQuoted(titleRegex, masked); ok {
		fields.Title = &text
		masked = mask(masked, span)
	}
	if text, span, ok := matchQuoted(descriptionRegex, masked); ok {
		fields.Description = &text
		masked = mask(masked, span)
	}

	if matches := priorityRegex.FindStringSubmatch(masked); len(matches) > 1 {
		if priority, ok := models.ParsePriority(matches[1]); ok {
			fields.Priority = &priority
		}
	} else if matches := priorityAdjRegex.FindStringSubmatch(masked); len(matches) > 1 {
		if priority, ok := models.ParsePriority(matches[1]); ok {
			fields.Priority = &priority
		}
	}

	if matches := statusRegex.FindStringSubmatch(masked); len(matches) > 1 {
		if status, ok := models.ParseStatus(matches[1]); ok {
			fields.Status = &status
		}
	}

	if matches := dueRegex.FindStringSubmatch(masked); len(matches) > 1 {
		// An out-of-range date is treated as no match, not as an error
		if dueDate, err := ParseDueDate(matches[1]); err == nil && dueDate != nil {
			fields.DueDate = dueDate
		}
	}

	return fields
}

// StripUpdateClauses removes every recognized update clause from the message
func StripUpdateClauses(message string) string {
	for _, clause := range updateClauses {
		message = clause.ReplaceAllString(message, " ")
	}
	return strings.Join(strings.Fields(message), " ")
}

// matchQuoted returns the quoted group of the first match and its byte span
func matchQuoted(re *regexp.Regexp, input string) (string, [2]int, bool) {
	loc := re.FindStringSubmatchIndex(input)
	if loc == nil {
		return "", [2]int{}, false
	}
	// Groups 1 and 2 are the single- and double-quoted alternatives
	for group := 1; group <= 2; group++ {
		start, end := loc[2*group], loc[2*group+1]
		if start >= 0 {
			return input[start:end], [2]int{loc[0], loc[1]}, true
		}
	}
	return "", [2]int{}, false
}

// mask blanks out a span while keeping byte offsets stable
func mask(input string, span [2]int) string {
	return input[:span[0]] + strings.Repeat(" ", span[1]-span[0]) + input[span[1]:]
}
