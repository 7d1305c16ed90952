package playlist

import "fmt"

// FormatBytesPerSecond renders a bandwidth figure for rendition labels.
// Thresholds divide by 1000, not 1024; consumers match on these exact
// strings, so the table must not change.
func FormatBytesPerSecond(n *int64) string {
	if n == nil {
		return ""
	}
	v := *n
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.2f GB/s", float64(v)/1_000_000_000)
	case v >= 1_000_000:
		return fmt.Sprintf("%.2f MB/s", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.2f KB/s", float64(v)/1_000)
	case v > 1:
		return fmt.Sprintf("%d bytes/s", v)
	case v == 1:
		return "1 byte/s"
	default:
		return ""
	}
}
