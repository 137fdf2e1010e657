package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// RunChat starts the interactive chat UI and blocks until the user quits
func RunChat(ctx context.Context, session ChatSession, tasks TaskLister) error {
	model := NewChatModel(ctx, session, tasks)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
