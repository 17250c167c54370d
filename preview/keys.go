package preview

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText() string {
	return "space pause  1/2 field  tab select  ←/→ adjust  i/o lights  s snapshot  q quit"
}
