// Package security guards the dynamic parts of admin list queries (search, filter and sort columns)
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidIdentifierRegex matches lowercase snake_case column names
var ValidIdentifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier checks that name can be placed unquoted in SQL on both Postgres and MySQL
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("identifier too long (max 63 characters)")
	}
	if !ValidIdentifierRegex.MatchString(name) {
		return fmt.Errorf("invalid identifier %q: only lowercase letters, numbers and underscores are allowed", name)
	}
	if isReservedWord(name) {
		return fmt.Errorf("'%s' is a reserved SQL keyword", name)
	}
	return nil
}

// EscapeLikePattern escapes the LIKE wildcards. Backslash is the default
// LIKE escape character on Postgres and MySQL, so no ESCAPE clause is needed.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// SearchCondition builds a case-insensitive "contains" match over several
// columns. Invalid columns are skipped; an empty condition means no filter.
func SearchCondition(columns []string, term string) (string, []interface{}) {
	term = strings.TrimSpace(term)
	if len(columns) == 0 || term == "" {
		return "", nil
	}

	param := "%" + strings.ToLower(EscapeLikePattern(term)) + "%"
	conditions := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		if ValidateIdentifier(col) != nil {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE ?", col))
		args = append(args, param)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "(" + strings.Join(conditions, " OR ") + ")", args
}

// AllowedFilterOperators defines the comparison operators accepted in list filters
var AllowedFilterOperators = map[string]string{
	"eq":      "=",
	"ne":      "<>",
	"gt":      ">",
	"gte":     ">=",
	"lt":      "<",
	"lte":     "<=",
	"in":      "IN",
	"null":    "IS NULL",
	"notnull": "IS NOT NULL",
}

// FilterCondition builds a parameterized condition for one column.
// Unknown operators fall back to equality.
func FilterCondition(column, operator string, value interface{}) (string, []interface{}, error) {
	if err := ValidateIdentifier(column); err != nil {
		return "", nil, err
	}

	op, ok := AllowedFilterOperators[operator]
	if !ok {
		op = "="
	}

	switch op {
	case "IS NULL", "IS NOT NULL":
		return fmt.Sprintf("%s %s", column, op), nil, nil
	case "IN":
		return fmt.Sprintf("%s IN ?", column), []interface{}{value}, nil
	default:
		return fmt.Sprintf("%s %s ?", column, op), []interface{}{value}, nil
	}
}

// OrderClause validates a sort column and returns "column ASC|DESC"
func OrderClause(column string, desc bool) (string, error) {
	if err := ValidateIdentifier(column); err != nil {
		return "", err
	}
	if desc {
		return column + " DESC", nil
	}
	return column + " ASC", nil
}

// isReservedWord checks if a word is reserved on Postgres or MySQL
func isReservedWord(word string) bool {
	reserved := map[string]bool{
		"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
		"array": true, "as": true, "asc": true, "both": true, "case": true,
		"cast": true, "check": true, "collate": true, "column": true,
		"constraint": true, "create": true, "current_date": true,
		"current_time": true, "current_timestamp": true, "current_user": true,
		"default": true, "desc": true, "distinct": true, "do": true, "else": true,
		"end": true, "except": true, "false": true, "fetch": true, "for": true,
		"foreign": true, "from": true, "grant": true, "group": true, "having": true,
		"in": true, "into": true, "key": true, "leading": true, "limit": true,
		"not": true, "null": true, "offset": true, "on": true, "only": true,
		"or": true, "order": true, "primary": true, "references": true,
		"select": true, "table": true, "then": true, "to": true, "true": true,
		"union": true, "unique": true, "user": true, "using": true, "when": true,
		"where": true, "window": true, "with": true,
	}
	return reserved[strings.ToLower(word)]
}
