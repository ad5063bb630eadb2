// Package render substitutes {{ NAME }} placeholders in an environment file
// template, producing the resolved file the application loads.
package render

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

// MissingPlaceholderError lists placeholders on active lines that had no
// value.
type MissingPlaceholderError struct {
	Names []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("no value for placeholders: %s", strings.Join(e.Names, ", "))
}

// MultilineValueError reports a value that would split its declaration over
// several lines of the resolved file.
type MultilineValueError struct {
	Name string
}

func (e *MultilineValueError) Error() string {
	return fmt.Sprintf("value for placeholder %s contains a line break", e.Name)
}

// Render copies the template from r to w, replacing every {{ NAME }} with
// values[NAME]. Whitespace inside the braces is ignored. Placeholders without
// a value are an error on active lines and are left untouched on commented
// lines, so optional settings can stay disabled in the output.
func Render(r io.Reader, values map[string]string, w io.Writer) error {
	var missing []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	bw := bufio.NewWriter(w)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		commented := strings.HasPrefix(strings.TrimSpace(line), "#")

		out, err := fasttemplate.ExecuteFuncStringWithErr(line, startTag, endTag,
			func(w io.Writer, tag string) (int, error) {
				name := strings.TrimSpace(tag)
				if v, ok := values[name]; ok {
					if strings.ContainsAny(v, "\r\n") {
						return 0, &MultilineValueError{Name: name}
					}
					return io.WriteString(w, v)
				}
				if !commented && !slices.Contains(missing, name) {
					missing = append(missing, name)
				}
				return io.WriteString(w, startTag+tag+endTag)
			})
		if err != nil {
			return fmt.Errorf("render line %d: %w", lineNo, err)
		}
		if _, err := bw.WriteString(out + "\n"); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return &MissingPlaceholderError{Names: missing}
	}
	return bw.Flush()
}

// String renders an in-memory template.
func String(template string, values map[string]string) (string, error) {
	var sb strings.Builder
	err := Render(strings.NewReader(template), values, &sb)
	return sb.String(), err
}
