package deck

import (
	"strconv"
	"strings"
)

// Manifest renders a plain text table of contents for doc: one line per
// page with the 1-based record numbers it carries.
func Manifest(doc *Document) string {
	lines := []string{"# " + doc.Filename}
	lines = append(lines, strconv.Itoa(doc.Layout.Columns)+"x"+strconv.Itoa(doc.Layout.Rows)+
		", "+strconv.Itoa(doc.Layout.CardsPerPage)+" cards per page")
	for _, p := range doc.Pages {
		line := string(p.Side) + " " + strconv.Itoa(p.Number+1) + ":"
		for _, idx := range p.Records {
			line += " " + strconv.Itoa(idx+1)
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.Join(lines, "\n") + "\n"
}
