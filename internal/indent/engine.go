// Package indent computes tree-aware indentation for newly opened lines
// and auto-dedent for closing delimiters, using tree-sitter grammars.
package indent

import (
	"context"
	"strings"
	"sync"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// indentNodes are grammar node kinds whose children are indented one level
// relative to the node's own line. Spans several grammars rather than one,
// since a single buffer-language mapping covers all of them cheaply.
var indentNodes = map[string]bool{
	// Go
	"block":              true,
	"literal_value":      true,
	"argument_list":       true,
	"parameter_list":      true,
	"composite_literal":   true,
	"struct_type":         true,
	"interface_type":      true,
	"switch_statement":    true,

	// Rust
	"token_tree":            true,
	"field_declaration_list": true,
	"enum_variant_list":     true,
	"declaration_list":      true,

	// Python
	"tuple":                  true,
	"list":                   true,
	"dictionary":              true,
	"set":                     true,
	"parenthesized_expression": true,

	// JavaScript / TypeScript
	"statement_block":  true,
	"class_body":        true,
	"switch_body":       true,
	"enum_body":         true,
	"interface_body":    true,
	"object_type":       true,
	"object":            true,
	"object_pattern":    true,
	"array":             true,
	"array_pattern":     true,
	"arguments":         true,
	"formal_parameters": true,
	"template_string":   true,
	"named_imports":     true,
	"export_clause":     true,
	"switch_case":       true,
	"switch_default":    true,

	// JSX/TSX
	"jsx_element":         true,
	"jsx_fragment":        true,
	"jsx_expression":      true,
	"jsx_opening_element": true,

	// JSON
	"pair": true,
}

// closingContainers maps a closing-bracket rune to the grammar node kinds
// whose opener it closes.
var closingContainers = map[rune][]string{
	'}': {
		"block", "statement_block", "class_body", "object", "object_pattern",
		"switch_body", "enum_body", "interface_body", "object_type",
		"named_imports", "export_clause", "field_declaration_list",
		"declaration_list", "dictionary", "set",
	},
	']': {"array", "array_pattern", "list", "index_expression"},
	')': {
		"arguments", "formal_parameters", "parenthesized_expression",
		"argument_list", "parameter_list", "tuple", "token_tree",
	},
}

// languageNames maps the editor's LSP languageID (see lsp.DetectLanguageID)
// to the grammar name go-sitter-forest registers it under.
var languageNames = map[string]string{
	"go":                 "go",
	"rust":               "rust",
	"python":             "python",
	"javascript":         "javascript",
	"javascriptreact":    "javascript",
	"typescript":         "typescript",
	"typescriptreact":    "tsx",
	"json":               "json",
	"bash":               "bash",
	"shellscript":        "bash",
}

// Engine parses buffers with tree-sitter and answers indentation queries.
// Parsers are pooled per language since constructing one is not free and
// Engine methods may be called from multiple editor goroutines.
type Engine struct {
	mu      sync.Mutex
	parsers map[string]*sitter.Parser
}

// NewEngine creates an indentation engine with no parsers yet constructed.
func NewEngine() *Engine {
	return &Engine{parsers: make(map[string]*sitter.Parser)}
}

// SupportsLanguage reports whether languageID has a registered grammar.
func (e *Engine) SupportsLanguage(languageID string) bool {
	name, ok := languageNames[languageID]
	if !ok {
		return false
	}
	return forest.GetLanguage(name) != nil
}

func (e *Engine) parserFor(languageID string) (*sitter.Parser, bool) {
	name, ok := languageNames[languageID]
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if p, ok := e.parsers[name]; ok {
		return p, true
	}

	lang := forest.GetLanguage(name)
	if lang == nil {
		return nil, false
	}

	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		return nil, false
	}
	e.parsers[name] = p
	return p, true
}

func (e *Engine) parse(languageID, source string) (*sitter.Tree, bool) {
	parser, ok := e.parserFor(languageID)
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	tree, err := parser.ParseString(context.Background(), nil, []byte(source))
	e.mu.Unlock()
	if err != nil || tree == nil {
		return nil, false
	}
	return tree, true
}

// IndentForNewLine implements the opening and general contracts: it
// returns the number of spaces a new line opened at cursorByte (the byte
// offset of the cursor, just before the newline was inserted) should be
// indented to.
//
// Opening contract: if the current line ends with an unclosed opening
// delimiter ({, [, (), the new line indents one level past it.
// General contract: otherwise the new line aligns with the innermost
// grammar node enclosing the cursor that the grammar treats as an indent
// scope; failing that, it copies the current line's own indent.
func (e *Engine) IndentForNewLine(languageID, source string, cursorByte, tabWidth int) (spaces int, ok bool) {
	lineIndent := lineIndentAtByte(source, cursorByte)

	lineBefore := lineBeforeCursor(source, cursorByte)
	trimmed := strings.TrimRight(lineBefore, " \t")
	if len(trimmed) > 0 {
		switch trimmed[len(trimmed)-1] {
		case '{', '[', '(':
			return lineIndent + tabWidth, true
		case '>':
			if isOpeningJSXTagLine(trimmed) {
				return lineIndent + tabWidth, true
			}
		}
	}

	tree, ok := e.parse(languageID, source)
	if !ok {
		return lineIndent, false
	}
	defer tree.Close()

	path := ancestorPath(tree.RootNode(), uint32(cursorByte))
	level := 0
	for _, n := range path {
		if !indentNodes[n.Type()] {
			continue
		}
		start, end := n.StartByte(), n.EndByte()
		if uint32(cursorByte) > start && uint32(cursorByte) < end {
			level++
		}
	}

	if level > 0 {
		return level * tabWidth, true
	}
	return lineIndent, true
}

// ShouldDedentClosingBracket implements the closing contract: a line
// containing only whitespace before the cursor, immediately followed by
// bracket, dedents to the indent of the line where the matching opener
// began, if the current indent exceeds it.
func (e *Engine) ShouldDedentClosingBracket(languageID, source string, cursorByte int, bracket rune, tabWidth int) (dedentTo int, should bool) {
	lineBefore := lineBeforeCursor(source, cursorByte)
	if strings.Trim(lineBefore, " \t") != "" {
		return 0, false
	}
	currentIndent := len(lineBefore)

	expected, ok := e.closingBracketIndent(languageID, source, cursorByte, bracket)
	if !ok {
		if currentIndent >= tabWidth {
			return currentIndent - tabWidth, true
		}
		return 0, false
	}

	if currentIndent > expected {
		return expected, true
	}
	return 0, false
}

func (e *Engine) closingBracketIndent(languageID, source string, cursorByte int, bracket rune) (int, bool) {
	containers, ok := closingContainers[bracket]
	if !ok {
		return 0, false
	}

	tree, ok := e.parse(languageID, source)
	if !ok {
		return 0, false
	}
	defer tree.Close()

	path := ancestorPath(tree.RootNode(), uint32(cursorByte))
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if containsString(containers, n.Type()) {
			return lineIndentAtByte(source, int(n.StartByte())), true
		}
	}
	return 0, false
}

// isOpeningJSXTagLine reports whether trimmed ends in an opening JSX tag,
// e.g. "<div>" or "return (\n  <Foo bar=\"baz\">" — as opposed to a
// self-closing tag ("<Foo />") or a closing tag ("</Foo>"), neither of
// which should indent their following line.
func isOpeningJSXTagLine(trimmed string) bool {
	if !strings.HasSuffix(trimmed, ">") || strings.HasSuffix(trimmed, "/>") {
		return false
	}
	lt := strings.LastIndexByte(trimmed, '<')
	if lt < 0 {
		return false
	}
	return !strings.HasPrefix(trimmed[lt:], "</")
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// ancestorPath returns root and each descendant down to the deepest node
// containing byte, in root-to-leaf order.
func ancestorPath(root sitter.Node, byte uint32) []sitter.Node {
	path := []sitter.Node{root}
	node := root
	for {
		if byte < node.StartByte() || byte > node.EndByte() {
			return path
		}
		count := node.NamedChildCount()
		var next *sitter.Node
		for i := uint32(0); i < count; i++ {
			child := node.NamedChild(i)
			if byte >= child.StartByte() && byte <= child.EndByte() {
				c := child
				next = &c
				break
			}
		}
		if next == nil {
			return path
		}
		node = *next
		path = append(path, node)
	}
}

func lineBeforeCursor(source string, cursorByte int) string {
	if cursorByte > len(source) {
		cursorByte = len(source)
	}
	lineStart := strings.LastIndexByte(source[:cursorByte], '\n') + 1
	return source[lineStart:cursorByte]
}

func lineIndentAtByte(source string, byte int) int {
	if byte > len(source) {
		byte = len(source)
	}
	lineStart := strings.LastIndexByte(source[:byte], '\n') + 1
	line := source[lineStart:]

	indent := 0
	for _, ch := range line {
		switch ch {
		case ' ':
			indent++
		case '\t':
			indent += 4
		default:
			return indent
		}
	}
	return indent
}
