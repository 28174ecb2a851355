package cli

// tabWidth is the column stop interval for '\t'.
const tabWidth = 8

// strike is one character typed at a page position.
type strike struct {
	row, col int
	ch       rune
}

// layoutText places text on pages of rows by cols cells the way a
// typewriter carriage would. Lines longer than cols wrap, '\b' backs the
// carriage up one column so the next character overstrikes, '\r' returns
// to column 0, '\t' advances to the next tab stop and '\f' feeds a new
// page. Spaces advance without striking.
func layoutText(text string, cols, rows int) [][]strike {
	cols, rows = max(cols, 1), max(rows, 1)
	pages := [][]strike{nil}
	row, col := 0, 0

	newline := func() {
		row++
		col = 0
		if row >= rows {
			pages = append(pages, nil)
			row = 0
		}
	}

	for _, ch := range text {
		switch ch {
		case '\n':
			newline()
		case '\r':
			col = 0
		case '\b':
			col = max(col-1, 0)
		case '\t':
			col = (col/tabWidth + 1) * tabWidth
			if col >= cols {
				newline()
			}
		case '\f':
			pages = append(pages, nil)
			row, col = 0, 0
		default:
			if col >= cols {
				newline()
			}
			if ch != ' ' {
				last := len(pages) - 1
				pages[last] = append(pages[last], strike{row: row, col: col, ch: ch})
			}
			col++
		}
	}

	if len(pages) > 1 && len(pages[len(pages)-1]) == 0 {
		pages = pages[:len(pages)-1]
	}
	return pages
}
