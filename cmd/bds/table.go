package main

import (
	"io"
	"os"
	"strconv"

	"bds-go/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	// Default width if terminal size cannot be determined
	return 80
}

// printListings renders search results as a table sized to the terminal.
// The notice column absorbs whatever width the fixed columns leave over.
func printListings(w io.Writer, listings []*model.Listing) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	termWidth := getTerminalWidth()

	// ID, Category, Project, Price, Area, Phone, Status are kept
	// single line; measure the widest value per column.
	catWidth, projWidth := 8, 7
	for _, l := range listings {
		if w := runewidth.StringWidth(l.Category); w > catWidth {
			catWidth = w
		}
		if w := runewidth.StringWidth(l.Project); w > projWidth {
			projWidth = w
		}
	}
	if catWidth > 24 {
		catWidth = 24
	}
	if projWidth > 24 {
		projWidth = 24
	}

	// Remaining fixed columns: UUID (36), price (10), area (7),
	// phone (12), status (9). Three border/padding chars per column.
	fixed := 36 + 10 + 7 + 12 + 9 + catWidth + projWidth
	noticeWidth := termWidth - fixed - 9*3
	if noticeWidth < 12 {
		noticeWidth = 12
	}

	t.AppendHeader(table.Row{"ID", "Category", "Project", "Price", "Area", "Phone", "Status", "Notice"})

	for _, l := range listings {
		area := ""
		if l.HasArea() {
			area = formatFloat(*l.Area)
		}
		t.AppendRow(table.Row{
			l.ID,
			runewidth.Truncate(l.Category, catWidth, "..."),
			runewidth.Truncate(l.Project, projWidth, "..."),
			formatFloat(l.Price),
			area,
			l.Phone,
			l.Status,
			runewidth.Truncate(l.Notice, noticeWidth, "..."),
		})
	}

	t.Render()
}
