package types

import (
	"fmt"
	"regexp"
	"strings"
)

// Condition is a single pushdown predicate. Value keeps its raw textual form:
// double-quoted for string literals, bare for numerics/booleans, the literal
// "null" for null comparisons.
type Condition struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Filter is a flat predicate list combined with a single logical operator.
type Filter struct {
	Conditions      []Condition `json:"conditions,omitempty"`
	LogicalOperator string      `json:"logical_operator,omitempty"`
}

var conditionRegex = regexp.MustCompile(`^\s*([\w.]+)\s*(>=|<=|!=|>|<|=)\s*(.+?)\s*$`)

// ParseFilter parses expressions of the form
// `age >= 18 and score < 100` or `name = "gridstore"` into a Filter.
// Mixed and/or chains are rejected, matching what the WHERE renderer can emit.
// Connectives inside a double-quoted literal are part of the literal, so
// `name = "a and b"` stays a single condition.
func ParseFilter(filter string) (Filter, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return Filter{}, nil
	}

	andParts := splitOutsideQuotes(filter, " and ")
	orParts := splitOutsideQuotes(filter, " or ")

	logicalOp := ""
	parts := []string{filter}
	switch {
	case len(andParts) > 1 && len(orParts) > 1:
		return Filter{}, fmt.Errorf("mixed logical operators in filter: %s", filter)
	case len(andParts) > 1:
		logicalOp = "and"
		parts = andParts
	case len(orParts) > 1:
		logicalOp = "or"
		parts = orParts
	}

	conditions := make([]Condition, 0, len(parts))
	for _, part := range parts {
		matches := conditionRegex.FindStringSubmatch(part)
		if matches == nil {
			return Filter{}, fmt.Errorf("invalid filter condition: %s", part)
		}
		conditions = append(conditions, Condition{
			Column:   matches[1],
			Operator: matches[2],
			Value:    matches[3],
		})
	}

	return Filter{Conditions: conditions, LogicalOperator: logicalOp}, nil
}

// splitOutsideQuotes splits on every occurrence of separator that is not
// inside a double-quoted literal.
func splitOutsideQuotes(s, separator string) []string {
	parts := []string{}
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes && strings.HasPrefix(s[i:], separator) {
			parts = append(parts, s[start:i])
			start = i + len(separator)
			i = start - 1
		}
	}
	return append(parts, s[start:])
}
