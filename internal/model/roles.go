package model

import "strings"

// Roles names the column roles the analyzers operate on: one identifier
// column, one description column, and an ordered set of code columns.
type Roles struct {
	ID          string
	Description string
	Codes       []string
}

// InferFunc picks a column for a single role from the available columns.
// Returns false when no candidate matches.
type InferFunc func(columns []string) (string, bool)

// InferID is the default identifier heuristic: first column whose name
// contains "id" or "product".
func InferID(columns []string) (string, bool) {
	return firstContaining(columns, "id", "product")
}

// InferDescription is the default description heuristic: first column whose
// name contains "desc" or "name".
func InferDescription(columns []string) (string, bool) {
	return firstContaining(columns, "desc", "name")
}

func firstContaining(columns []string, substrings ...string) (string, bool) {
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, sub := range substrings {
			if strings.Contains(lower, sub) {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveRoles fills in unspecified roles by inference. Explicit values are
// never overridden. Code columns default to every column not claimed by the
// identifier or description role, preserving dataset column order.
func ResolveRoles(columns []string, explicit Roles, inferID, inferDescription InferFunc) Roles {
	resolved := explicit

	if resolved.ID == "" {
		if col, ok := inferID(columns); ok {
			resolved.ID = col
		} else if len(columns) > 0 {
			resolved.ID = columns[0]
		}
	}

	if resolved.Description == "" {
		if col, ok := inferDescription(columns); ok {
			resolved.Description = col
		} else if len(columns) > 1 {
			resolved.Description = columns[1]
		}
	}

	if len(resolved.Codes) == 0 {
		for _, col := range columns {
			if col != resolved.ID && col != resolved.Description {
				resolved.Codes = append(resolved.Codes, col)
			}
		}
	}

	return resolved
}
