package helpers

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRunPattern = regexp.MustCompile(`\d+`)

// SectionTypeCode extracts the type letters from a section code, e.g.
// "10L" -> "L", "2Lb" -> "B". The registrar feed encodes the type as the
// non-digit suffix of the section code.
func SectionTypeCode(sectionCode string) string {
	if sectionCode == "" {
		return ""
	}
	var b strings.Builder
	for _, c := range sectionCode {
		if c < '0' || c > '9' {
			b.WriteRune(c)
		}
	}
	typeCode := b.String()
	if strings.HasSuffix(typeCode, "Lb") {
		return "B"
	}
	return typeCode
}

// SectionSortPriority ranks section types for display: lectures first, then
// seminar/discussion/recitation, then labs, then everything else.
func SectionSortPriority(typeCode string) int {
	switch typeCode {
	case "L":
		return 0
	case "S", "D", "R":
		return 1
	case "B", "Lb":
		return 2
	default:
		return 3
	}
}

// SectionSortKey returns a key that orders sections by type priority and then
// by natural sort of the code ("2L" before "10L"). The key is a string built
// so lexicographic comparison matches the intended order.
func SectionSortKey(sectionCode, typeCode string) string {
	if typeCode == "" {
		typeCode = SectionTypeCode(sectionCode)
	}
	priority := SectionSortPriority(typeCode)

	// Zero-pad every digit run so lexicographic order equals numeric order.
	padded := digitRunPattern.ReplaceAllStringFunc(sectionCode, func(digits string) string {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return digits
		}
		return padNumber(n)
	})

	return strconv.Itoa(priority) + "|" + padded
}

func padNumber(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}
