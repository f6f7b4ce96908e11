package dataset

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeHeader cleans header cells and pads the header to width.
// Blank names become "Unnamed: i" and repeats get ".1", ".2" suffixes.
func normalizeHeader(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = CleanHeader(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for n := seen[base]; ; n++ {
			if _, taken := seen[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s.%d", base, n)
		}
		seen[base]++
		if name != base {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

// CleanHeader trims whitespace, removes BOM and zero-width characters and
// applies Unicode NFC so visually equal headers compare equal.
func CleanHeader(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\uFEFF', '\u200B', '\u200C', '\u200D':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(norm.NFC.String(s))
}
