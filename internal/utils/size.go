package utils

import "github.com/dustin/go-humanize"

// HumanSize formats a byte count using 1024-based units
func HumanSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
