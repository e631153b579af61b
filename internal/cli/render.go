package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/userbook/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderUsersTable(views []models.UserView) string {
	rows := make([][]string, 0, len(views))
	for i, v := range views {
		rows = append(rows, []string{strconv.Itoa(i + 1), v.Name, v.Number, v.CreatedAt})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "Name", "Number", "Registered").
		Rows(rows...)

	return t.String()
}

func renderUsersPlain(views []models.UserView) string {
	var b strings.Builder
	for i, v := range views {
		fmt.Fprintf(&b, "\nUser %d:\n", i+1)
		fmt.Fprintf(&b, "Name: %s\n", v.Name)
		fmt.Fprintf(&b, "Number: %s\n", v.Number)
		fmt.Fprintf(&b, "Registered: %s\n", v.CreatedAt)
	}
	return b.String()
}
