package markdown

import (
	"context"
	"math"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tree_sitter_markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
	tree_sitter_markdown_inline "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown-inline"
)

// Span marks a highlighted run on a single line. Columns are rune
// offsets into the line.
type Span struct {
	StartCol int
	EndCol   int
	Kind     string
}

// Highlighter parses a document with the markdown grammar and answers
// per-line highlight queries. Block structure comes from the block
// grammar; emphasis, code spans and links come from a per-line pass
// with the inline grammar.
type Highlighter struct {
	parser       *sitter.Parser
	query        *sitter.Query
	inlineParser *sitter.Parser
	inlineQuery  *sitter.Query

	tree   *sitter.Tree
	source []byte
	lines  []string
}

func New() (*Highlighter, error) {
	blockLang := tree_sitter_markdown.GetLanguage()
	inlineLang := tree_sitter_markdown_inline.GetLanguage()

	query, err := sitter.NewQuery([]byte(blockHighlightQuery), blockLang)
	if err != nil {
		return nil, err
	}
	inlineQuery, err := sitter.NewQuery([]byte(inlineHighlightQuery), inlineLang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(blockLang)
	inlineParser := sitter.NewParser()
	inlineParser.SetLanguage(inlineLang)

	return &Highlighter{
		parser:       parser,
		query:        query,
		inlineParser: inlineParser,
		inlineQuery:  inlineQuery,
	}, nil
}

// SetText reparses the whole document.
func (h *Highlighter) SetText(text string) {
	h.source = []byte(text)
	h.lines = strings.Split(text, "\n")
	tree, _ := h.parser.ParseCtx(context.Background(), nil, h.source)
	h.tree = tree
}

// Highlights returns spans for the requested line range, keyed by line.
func (h *Highlighter) Highlights(startLine, endLine int) map[int][]Span {
	if h.tree == nil || startLine < 0 || endLine < startLine {
		return nil
	}
	if endLine >= len(h.lines) {
		endLine = len(h.lines) - 1
	}
	if endLine < startLine {
		return nil
	}

	out := h.queryHighlights(h.query, h.tree, h.source, startLine, endLine)
	if out == nil {
		out = make(map[int][]Span)
	}

	fenced := collectFencedRows(h.tree.RootNode())
	for row := startLine; row <= endLine; row++ {
		if fenced[row] {
			line := []rune(h.lines[row])
			out[row] = append(out[row], Span{StartCol: 0, EndCol: len(line), Kind: "code"})
		}
	}

	for row := startLine; row <= endLine; row++ {
		if fenced[row] {
			continue
		}
		line := h.lines[row]
		if line == "" {
			continue
		}
		inlineTree, _ := h.inlineParser.ParseCtx(context.Background(), nil, []byte(line))
		if inlineTree == nil {
			continue
		}
		lineSpans := h.queryHighlights(h.inlineQuery, inlineTree, []byte(line), 0, 0)
		for offset, spans := range lineSpans {
			targetRow := row + offset
			if targetRow < startLine || targetRow > endLine {
				continue
			}
			out[targetRow] = append(out[targetRow], adjustCols(spans, line)...)
		}
	}

	return out
}

func (h *Highlighter) queryHighlights(query *sitter.Query, tree *sitter.Tree, source []byte, startLine, endLine int) map[int][]Span {
	if query == nil || tree == nil {
		return nil
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		sitter.Point{Row: uint32(startLine), Column: 0},
		sitter.Point{Row: uint32(endLine + 1), Column: 0},
	)
	cursor.Exec(query, tree.RootNode())

	lines := strings.Split(string(source), "\n")
	out := make(map[int][]Span)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			kind := query.CaptureNameForId(capture.Index)
			node := capture.Node
			start := node.StartPoint()
			end := node.EndPoint()
			if int(end.Row) < startLine || int(start.Row) > endLine {
				continue
			}
			startRow := int(start.Row)
			endRow := int(end.Row)
			for row := startRow; row <= endRow; row++ {
				if row < startLine || row > endLine {
					continue
				}
				startCol := 0
				endCol := math.MaxInt32
				if row == startRow {
					startCol = byteToRuneCol(lines, row, int(start.Column))
				}
				if row == endRow {
					endCol = byteToRuneCol(lines, row, int(end.Column))
				}
				out[row] = append(out[row], Span{
					StartCol: startCol,
					EndCol:   endCol,
					Kind:     kind,
				})
			}
		}
	}
	return out
}

// byteToRuneCol translates a tree-sitter byte column into a rune column.
func byteToRuneCol(lines []string, row, byteCol int) int {
	if row < 0 || row >= len(lines) {
		return byteCol
	}
	line := lines[row]
	if byteCol > len(line) {
		byteCol = len(line)
	}
	return len([]rune(line[:byteCol]))
}

// adjustCols is for the single-line inline pass, where source is the
// line itself.
func adjustCols(spans []Span, line string) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.EndCol == math.MaxInt32 {
			s.EndCol = len([]rune(line))
		}
		out = append(out, s)
	}
	return out
}

// collectFencedRows returns the set of rows covered by fenced code
// blocks. Inline markup is not parsed inside them.
func collectFencedRows(root *sitter.Node) map[int]bool {
	rows := map[int]bool{}
	if root == nil {
		return rows
	}
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if n.Type() == "fenced_code_block" {
			start := int(n.StartPoint().Row)
			end := int(n.EndPoint().Row)
			for row := start; row <= end; row++ {
				rows[row] = true
			}
			continue
		}
		childCount := int(n.NamedChildCount())
		for i := 0; i < childCount; i++ {
			child := n.NamedChild(i)
			if child != nil {
				stack = append(stack, child)
			}
		}
	}
	return rows
}

const blockHighlightQuery = `
(atx_heading) @heading
(setext_heading) @heading
(thematic_break) @quote
(block_quote_marker) @quote
(list_marker_plus) @heading
(list_marker_minus) @heading
(list_marker_star) @heading
(list_marker_dot) @heading
(list_marker_parenthesis) @heading
(task_list_marker_checked) @strong
(task_list_marker_unchecked) @strong
(fenced_code_block_delimiter) @code
(indented_code_block) @code
(info_string) @code
(language) @code
(link_reference_definition) @link
`

const inlineHighlightQuery = `
(code_span) @code
(emphasis) @emphasis
(strong_emphasis) @strong
(strikethrough) @quote
(inline_link) @link
(full_reference_link) @link
(collapsed_reference_link) @link
(shortcut_link) @link
(image) @link
(uri_autolink) @link
(email_autolink) @link
`
