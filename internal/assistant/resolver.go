package assistant

import (
	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

// Resolve finds the task a message is about. An explicit reference
// ("task #3", "ID: 3") matching an existing ID wins; otherwise the first
// task whose title contains the message's title phrase as whole words is
// returned.
func Resolve(message string, tasks []models.Task) (models.Task, bool) {
	for _, ref := range parser.FindTaskRefs(message) {
		for _, task := range tasks {
			if task.ID == ref {
				return task, true
			}
		}
	}

	phrase := parser.TitlePhrase(message)
	if phrase == "" {
		return models.Task{}, false
	}
	for _, task := range tasks {
		if parser.ContainsPhrase(task.Title, phrase) {
			return task, true
		}
	}
	return models.Task{}, false
}
