package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/mzaikin/goroom/internal/markdown"
)

// visualRow is one screen row of the wrapped text: a slice [start, end)
// of a logical line.
type visualRow struct {
	line  int
	start int
	end   int
	first bool
}

// wrapLine breaks a line into segments no wider than width, preferring
// to break after a space.
func wrapLine(line []rune, width int) [][2]int {
	if width < 1 {
		width = 1
	}
	if len(line) <= width {
		return [][2]int{{0, len(line)}}
	}
	var segs [][2]int
	start := 0
	for len(line)-start > width {
		end := start + width
		brk := -1
		for i := end; i > start; i-- {
			if line[i-1] == ' ' {
				brk = i
				break
			}
		}
		if brk <= start {
			brk = end
		}
		segs = append(segs, [2]int{start, brk})
		start = brk
	}
	return append(segs, [2]int{start, len(line)})
}

func (e *Editor) layoutRows() []visualRow {
	lines := e.buf().Lines()
	rows := make([]visualRow, 0, len(lines))
	for i, line := range lines {
		for j, seg := range wrapLine([]rune(line), e.innerWidth) {
			rows = append(rows, visualRow{line: i, start: seg[0], end: seg[1], first: j == 0})
		}
	}
	return rows
}

// cursorRow finds the visual row holding the cursor.
func (e *Editor) cursorRow(rows []visualRow) int {
	b := e.buf()
	line, col := b.Position(b.Cursor())
	last := 0
	for i, row := range rows {
		if row.line != line {
			continue
		}
		last = i
		if col >= row.start && col < row.end {
			return i
		}
	}
	return last
}

func (e *Editor) gutterWidth() int {
	if !e.lineNumbers {
		return 0
	}
	return len(strconv.Itoa(e.buf().LineCount())) + 1
}

func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	gutter := e.gutterWidth()
	inner := e.textWidth
	if max := w - 2 - 2*e.padding - gutter; inner > max {
		inner = max
	}
	if inner < 1 {
		inner = 1
	}
	e.innerWidth = inner

	boxWidth := inner + gutter + 2*e.padding + 2
	boxX := (w - boxWidth) / 2
	if boxX < 0 {
		boxX = 0
	}
	boxHeight := h - 1
	textRows := boxHeight - 2
	if textRows < 0 {
		textRows = 0
	}
	e.viewRows = textRows
	textX := boxX + 1 + e.padding + gutter
	textY := 1

	v := e.view()
	rows := e.layoutRows()
	cursorIdx := e.cursorRow(rows)
	if v.scroll > len(rows)-1 {
		v.scroll = len(rows) - 1
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
	if textRows > 0 {
		if cursorIdx < v.scroll {
			v.scroll = cursorIdx
		}
		if cursorIdx >= v.scroll+textRows {
			v.scroll = cursorIdx - textRows + 1
		}
	}

	s.SetStyle(e.styleMain)
	s.Clear()
	e.drawBorder(s, boxX, 0, boxWidth, boxHeight)

	spans := e.visibleHighlights(rows, textRows)
	lines := e.buf().Lines()
	for y := 0; y < textRows; y++ {
		idx := v.scroll + y
		if idx >= len(rows) {
			break
		}
		row := rows[idx]
		line := []rune(lines[row.line])
		if e.lineNumbers && row.first {
			num := strconv.Itoa(row.line + 1)
			drawText(s, textX-gutter, textY+y, num, e.styleLineNumber)
		}
		for i := row.start; i < row.end; i++ {
			r := line[i]
			if r == '\t' {
				r = ' '
			}
			s.SetContent(textX+(i-row.start), textY+y, r, nil, e.styleAt(spans, row.line, i))
		}
	}

	e.renderStatusline(s, w, h-1)

	if e.prompt != promptNone {
		s.ShowCursor(len(e.promptLabel)+len(e.promptInput)+1, h-1)
		s.Show()
		return
	}
	if textRows > 0 && cursorIdx >= v.scroll && cursorIdx < v.scroll+textRows {
		row := rows[cursorIdx]
		_, col := e.buf().Position(e.buf().Cursor())
		s.ShowCursor(textX+(col-row.start), textY+(cursorIdx-v.scroll))
	} else {
		s.HideCursor()
	}
	s.Show()
}

func (e *Editor) drawBorder(s tcell.Screen, x, y, w, h int) {
	if w < 2 || h < 2 {
		return
	}
	for i := 1; i < w-1; i++ {
		s.SetContent(x+i, y, '─', nil, e.styleBorder)
		s.SetContent(x+i, y+h-1, '─', nil, e.styleBorder)
	}
	for i := 1; i < h-1; i++ {
		s.SetContent(x, y+i, '│', nil, e.styleBorder)
		s.SetContent(x+w-1, y+i, '│', nil, e.styleBorder)
	}
	s.SetContent(x, y, '┌', nil, e.styleBorder)
	s.SetContent(x+w-1, y, '┐', nil, e.styleBorder)
	s.SetContent(x, y+h-1, '└', nil, e.styleBorder)
	s.SetContent(x+w-1, y+h-1, '┘', nil, e.styleBorder)
}

// visibleHighlights reparses the buffer if it changed and returns spans
// for the logical lines currently on screen.
func (e *Editor) visibleHighlights(rows []visualRow, textRows int) map[int][]markdown.Span {
	v := e.view()
	if e.highlighter == nil || v.help || len(rows) == 0 || textRows == 0 {
		return nil
	}
	if e.hlView != v || e.hlTick != v.tick {
		e.highlighter.SetText(v.buf.Text())
		e.hlView = v
		e.hlTick = v.tick
	}
	first := rows[v.scroll].line
	lastIdx := v.scroll + textRows - 1
	if lastIdx > len(rows)-1 {
		lastIdx = len(rows) - 1
	}
	return e.highlighter.Highlights(first, rows[lastIdx].line)
}

func (e *Editor) styleAt(spans map[int][]markdown.Span, line, col int) tcell.Style {
	style := e.styleMain
	for _, span := range spans[line] {
		if col >= span.StartCol && col < span.EndCol {
			if s, ok := e.mdStyles[span.Kind]; ok {
				style = s
			}
		}
	}
	return style
}

func (e *Editor) renderStatusline(s tcell.Screen, w, y int) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, e.styleStatus)
	}

	if e.prompt != promptNone {
		drawText(s, 1, y, e.promptLabel+string(e.promptInput), e.styleStatus)
		return
	}

	left := e.statusMessage
	if left == "" {
		v := e.view()
		mod := ""
		if v.buf.Modified() && !v.help {
			mod = " [+]"
		}
		left = fmt.Sprintf("%s%s  %d/%d", v.title(), mod, e.current+1, len(e.views))
	}
	drawText(s, 1, y, left, e.styleStatus)

	b := e.buf()
	line, col := b.Position(b.Cursor())
	right := fmt.Sprintf("Ln %d, Col %d ", line+1, col+1)
	if x := w - len(right) - 1; x > len(left)+2 {
		drawText(s, x, y, right, e.styleStatus)
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
