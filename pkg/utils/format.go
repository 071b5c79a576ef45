package utils

import (
	"fmt"
	"time"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count using binary (1024) steps, e.g. "1.5 KB".
func FormatBytes(bytes int64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, byteUnits[unit])
}

// FormatDuration renders d with its two most significant units: "45s",
// "2m 5s", "3h 10m" or "2d 4h".
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	case seconds < 86400:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	default:
		return fmt.Sprintf("%dd %dh", seconds/86400, (seconds%86400)/3600)
	}
}

// FormatPrice renders price with four decimals followed by the currency code.
func FormatPrice(price float64, currency string) string {
	return fmt.Sprintf("%.4f %s", price, currency)
}

// Chunk splits items into consecutive slices of at most size elements.
// A non-positive size yields nil.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
