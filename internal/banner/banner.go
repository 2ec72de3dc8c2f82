package banner

import (
	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	ascii := `
   __  ___                     __  ___           __
  /  |/  /__  ___  ___ ____   /  |/  /__ _____  / /__
 / /|_/ / _ \/ _ \/ _ '/ _ \ / /|_/ / _ '/ __/ /  '_/
/_/  /_/\___/_//_/\_, /\___//_/  /_/\_,_/_/   /_/\_\
                 /___/                               `

	return "\n" + style.Render(ascii) + "\n"
}
