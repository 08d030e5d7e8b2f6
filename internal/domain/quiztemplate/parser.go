// Package quiztemplate reads and writes the per-language code templates stored
// on a quiz. A template document marks up to three sections:
//
//	//PREPEND BEGIN
//	...
//	//PREPEND END
//	//TEMPLATE BEGIN
//	...
//	//TEMPLATE END
//	//APPEND BEGIN
//	...
//	//APPEND END
//
// Only the TEMPLATE section is shown to users; PREPEND and APPEND are glued
// around their code by the judge.
package quiztemplate

import "strings"

const (
	SectionPrepend  = "PREPEND"
	SectionTemplate = "TEMPLATE"
	SectionAppend   = "APPEND"
)

// Sections holds the captured text of each section, one "\n" per source line.
type Sections struct {
	Prepend  string `json:"prepend"`
	Template string `json:"template"`
	Append   string `json:"append"`
}

// Parse extracts the three sections from doc. It never fails: missing or
// unclosed sections yield whatever was captured, possibly "".
//
// The first non-empty block of a section wins; later blocks with the same
// name are skipped.
func Parse(doc string) Sections {
	captured := map[string]*strings.Builder{
		SectionPrepend:  {},
		SectionTemplate: {},
		SectionAppend:   {},
	}

	current := ""
	for _, line := range splitLines(doc) {
		if name, begin, ok := marker(line); ok {
			switch {
			case begin && captured[name].Len() == 0:
				current = name
			case begin:
				current = "" // already captured, skip this block
			case name == current:
				current = ""
			}
			continue
		}
		if current != "" {
			captured[current].WriteString(line)
			captured[current].WriteByte('\n')
		}
	}

	return Sections{
		Prepend:  captured[SectionPrepend].String(),
		Template: captured[SectionTemplate].String(),
		Append:   captured[SectionAppend].String(),
	}
}

// marker recognises "//NAME BEGIN" and "//NAME END" for the known names.
func marker(line string) (name string, begin bool, ok bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "//") {
		return "", false, false
	}
	s = s[2:]
	switch {
	case strings.HasSuffix(s, " BEGIN"):
		name, begin = strings.TrimSuffix(s, " BEGIN"), true
	case strings.HasSuffix(s, " END"):
		name = strings.TrimSuffix(s, " END")
	default:
		return "", false, false
	}
	switch name {
	case SectionPrepend, SectionTemplate, SectionAppend:
		return name, begin, true
	}
	return "", false, false
}

func splitLines(doc string) []string {
	if doc == "" {
		return nil
	}
	lines := strings.Split(doc, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
