package db

import "github.com/balkashynov/taskpilot/internal/models"

// Column is one status lane of the board
type Column struct {
	Status models.Status `json:"status"`
	Label  string        `json:"label"`
	Tasks  []models.Task `json:"tasks"`
}

// Board groups tasks into one column per status, in Statuses() order.
// Tasks keep their relative order; invalid tasks are left out.
func Board(tasks []models.Task) []Column {
	index := make(map[models.Status]int)
	columns := make([]Column, 0, len(models.Statuses()))
	for i, status := range models.Statuses() {
		index[status] = i
		columns = append(columns, Column{Status: status, Label: status.Label(), Tasks: []models.Task{}})
	}

	for _, task := range tasks {
		if !task.Valid() {
			continue
		}
		i := index[task.Status]
		columns[i].Tasks = append(columns[i].Tasks, task)
	}
	return columns
}
