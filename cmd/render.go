/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"github.com/allbin/serialkit/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

// renderTable renders a static bubble-table with the shared theme
func renderTable(columns []table.Column, rows []table.Row) string {
	return table.New(columns).
		WithRows(rows).
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(styles.Mauve)).
		WithBaseStyle(lipgloss.NewStyle().BorderForeground(styles.Surface2).Align(lipgloss.Left)).
		BorderRounded().
		View()
}
