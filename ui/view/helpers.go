package view

import "strconv"

// indexOf parses a Tk combobox index, returning -1 when it is out of range.
func indexOf(s string, n int) int {
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 || idx >= n {
		return -1
	}
	return idx
}
