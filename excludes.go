package main

import (
	"fmt"
	"regexp"
)

// Exclusion leaves a field untouched for rows where the value of Column
// matches any of Patterns
type Exclusion struct {
	Column   string
	Patterns []*regexp.Regexp
}

// compileExcludes compiles the patterns of the exclude specs
func compileExcludes(specs []ExcludeSpec) ([]Exclusion, error) {
	var out []Exclusion
	for _, es := range specs {
		if es.Column == "" {
			return nil, fmt.Errorf("exclude column name cannot be empty")
		}
		if len(es.Patterns) == 0 {
			return nil, fmt.Errorf("exclude on column %s has no patterns", es.Column)
		}
		ex := Exclusion{Column: es.Column}
		for _, p := range es.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("exclude on column %s: %w", es.Column, err)
			}
			ex.Patterns = append(ex.Patterns, re)
		}
		out = append(out, ex)
	}
	return out, nil
}

// isExcluded returns true if the row's value for any exclusion column
// contains a match for one of that exclusion's patterns. NULL values
// never match.
func isExcluded(excludes []Exclusion, row *Row) bool {
	for _, ex := range excludes {
		v, err := row.colVal(ex.Column)
		if err != nil {
			continue
		}
		s, ok := textValue(v)
		if !ok {
			continue
		}
		for _, re := range ex.Patterns {
			if re.MatchString(s) {
				return true
			}
		}
	}
	return false
}
