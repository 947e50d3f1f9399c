package repository

import "strconv"

// itoa builds positional placeholder suffixes for dynamically composed queries.
func itoa(n int) string {
	return strconv.Itoa(n)
}
