package parser

import (
	"regexp"
	"strings"
)

// taskRefRegex matches explicit task references: "task #42" or "ID: 42"
var taskRefRegex = regexp.MustCompile(`(?i)\btask\s*#\s*([A-Za-z0-9-]+)|\bid\s*:\s*([A-Za-z0-9-]+)`)

// FindTaskRefs returns the referenced IDs in the order they appear.
// IDs are returned as written; matching against stored IDs is exact.
func FindTaskRefs(message string) []string {
	var refs []string
	for _, match := range taskRefRegex.FindAllStringSubmatch(message, -1) {
		for _, group := range match[1:] {
			if group != "" {
				refs = append(refs, group)
			}
		}
	}
	return refs
}

// StripTaskRefs removes every task reference from the message
func StripTaskRefs(message string) string {
	return strings.Join(strings.Fields(taskRefRegex.ReplaceAllString(message, " ")), " ")
}
