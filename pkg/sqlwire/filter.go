package sqlwire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gridstore-io/gridlink/types"
	"github.com/gridstore-io/gridlink/utils"
)

// operators the gateway WHERE renderer can express
var supportedOperators = types.NewSet(">", ">=", "<", "<=", "=", "!=")

// QuoteIdentifier quotes an identifier for the PostgreSQL-wire gateway.
func QuoteIdentifier(identifier string) string {
	return fmt.Sprintf("%q", identifier)
}

// QuoteTable returns the properly quoted collection.table combination.
func QuoteTable(ref types.TableRef) string {
	if ref.Collection == "" {
		return QuoteIdentifier(ref.Name)
	}
	return fmt.Sprintf("%s.%s", QuoteIdentifier(ref.Collection), QuoteIdentifier(ref.Name))
}

// QuoteColumns returns a slice of quoted column names.
func QuoteColumns(columns []string) []string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = QuoteIdentifier(col)
	}
	return quoted
}

func buildCondition(cond types.Condition) (string, error) {
	if !supportedOperators.Exists(cond.Operator) {
		return "", &types.UnsupportedPredicateError{Column: cond.Column, Operator: cond.Operator}
	}

	quotedColumn := QuoteIdentifier(cond.Column)

	// Handle unquoted null value
	if cond.Value == "null" {
		switch cond.Operator {
		case "=":
			return fmt.Sprintf("%s IS NULL", quotedColumn), nil
		case "!=":
			return fmt.Sprintf("%s IS NOT NULL", quotedColumn), nil
		default:
			return fmt.Sprintf("%s %s NULL", quotedColumn, cond.Operator), nil
		}
	}

	// Parse and format value
	value := cond.Value
	if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		// Handle quoted strings
		unquoted := value[1 : len(value)-1]
		escaped := strings.ReplaceAll(unquoted, "'", "''")
		value = fmt.Sprintf("'%s'", escaped)
	} else {
		_, err := strconv.ParseFloat(value, 64)
		booleanValue := strings.EqualFold(value, "true") || strings.EqualFold(value, "false")
		if err != nil && !booleanValue {
			escaped := strings.ReplaceAll(value, "'", "''")
			value = fmt.Sprintf("'%s'", escaped)
		}
	}

	return fmt.Sprintf("%s %s %s", quotedColumn, cond.Operator, value), nil
}

// WhereClause renders a filter into a WHERE fragment. An empty filter yields
// an empty string so callers can splice it into queries unconditionally.
func WhereClause(filter types.Filter) (string, error) {
	if len(filter.Conditions) == 0 {
		return "", nil
	}

	conditions := make([]string, 0, len(filter.Conditions))
	for _, cond := range filter.Conditions {
		formatted, err := buildCondition(cond)
		if err != nil {
			return "", err
		}
		conditions = append(conditions, formatted)
	}

	logicalOperator := utils.Ternary(filter.LogicalOperator == "", "and", filter.LogicalOperator).(string)
	return fmt.Sprintf("WHERE %s", strings.Join(conditions, fmt.Sprintf(" %s ", logicalOperator))), nil
}

// CountQuery builds the filtered count statement. The table reference is kept
// verbatim; only predicate identifiers are quoted.
func CountQuery(table types.TableRef, filter types.Filter) (string, error) {
	where, err := WhereClause(filter)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT count(*) FROM %s %s", table.String(), where), nil
}
