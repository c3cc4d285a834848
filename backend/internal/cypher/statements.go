package cypher

import (
	"fmt"
	"strings"
)

// scriptWriter accumulates the line-oriented script: //-prefixed comments,
// one upsert block per entity, each block terminated by a semicolon and
// separated by a blank line.
type scriptWriter struct {
	lines []string
}

func (w *scriptWriter) line(s string) {
	w.lines = append(w.lines, s)
}

func (w *scriptWriter) linef(format string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *scriptWriter) comment(s string) {
	w.lines = append(w.lines, "// "+s)
}

func (w *scriptWriter) commentf(format string, args ...interface{}) {
	w.comment(fmt.Sprintf(format, args...))
}

func (w *scriptWriter) blank() {
	w.lines = append(w.lines, "")
}

// assign writes the property-assignment clause of an upsert block and closes
// the statement.
func (w *scriptWriter) assign(fields []string) {
	for i, field := range fields {
		prefix := "    "
		if i == 0 {
			prefix = "SET "
		}
		suffix := ","
		if i == len(fields)-1 {
			suffix = ";"
		}
		w.lines = append(w.lines, prefix+field+suffix)
	}
}

// terminate closes the current statement when the last line carries no
// assignment clause.
func (w *scriptWriter) terminate() {
	if n := len(w.lines); n > 0 {
		w.lines[n-1] += ";"
	}
}

func (w *scriptWriter) String() string {
	return strings.Join(w.lines, "\n") + "\n"
}

// Split breaks a generated script into individually executable statements:
// comment lines and blank lines are dropped, statements end at a semicolon
// outside a single-quoted literal. String literals never span lines in
// generated scripts (bodies have their newlines collapsed).
func Split(script string) []string {
	var statements []string
	var current []string

	for _, raw := range strings.Split(script, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		current = append(current, line)
		if endsStatement(line) {
			stmt := strings.Join(current, "\n")
			statements = append(statements, strings.TrimSuffix(stmt, ";"))
			current = nil
		}
	}
	if len(current) > 0 {
		statements = append(statements, strings.Join(current, "\n"))
	}

	return statements
}

func endsStatement(line string) bool {
	inString := false
	escaped := false
	var last byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		if inString && c == '\\' {
			escaped = true
			continue
		}
		if c == '\'' {
			inString = !inString
		}
		if c != ' ' && c != '\t' {
			last = c
		}
	}
	return !inString && last == ';'
}
