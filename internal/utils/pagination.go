// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageParams normalizes 1-based pagination query values: page defaults to 1
// and is clamped to >= 1, size defaults to def and is clamped to [1, max].
// The returned offset is ready for a LIMIT/OFFSET query.
func PageParams(pageStr, sizeStr string, def, max int) (page, size, offset int) {
	page = AtoiDefault(pageStr, 1)
	if page < 1 {
		page = 1
	}
	size = AtoiDefault(sizeStr, def)
	if size < 1 {
		size = def
	}
	if size > max {
		size = max
	}
	return page, size, (page - 1) * size
}
