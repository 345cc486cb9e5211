package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/pkg/helpers"
)

// bigSwingRatio marks enrollment moves larger than 15% of capacity.
const bigSwingRatio = 0.15

// Formatter renders a ChangeSet as the compact text report delivered through
// the notifier and written to the reports directory.
type Formatter struct{}

// NewFormatter creates a Formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format renders the report. The first-ever snapshot (no baseline) gets a
// tracking summary instead of a line per section.
func (f *Formatter) Format(cs *models.ChangeSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Enrollment update — %s\n", cs.Semester)
	fmt.Fprintf(&b, "📅 %s | 📈 %.1f%%", cs.Timestamp, cs.OverallFill*100)
	if cs.HasBaseline() {
		fmt.Fprintf(&b, " (%+.1f%%)", cs.OverallFillDelta*100)
	}
	b.WriteString("\n")

	if !cs.HasBaseline() {
		courses := map[string]bool{}
		for _, c := range cs.Added {
			courses[c.CourseCode] = true
		}
		fmt.Fprintf(&b, "\n✨ Now tracking %d courses, %d sections\n", len(courses), len(cs.Added))
		return b.String()
	}

	if !cs.HasChanges() {
		b.WriteString("\nNo changes since the last report\n")
		return b.String()
	}

	for _, course := range groupByCourse(cs) {
		fmt.Fprintf(&b, "\n📚 %s", course.code)
		if course.title != "" {
			fmt.Fprintf(&b, " — %s", course.title)
		}
		b.WriteString("\n")

		for _, line := range course.lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

type courseBlock struct {
	code  string
	title string
	lines []string
}

type sectionLine struct {
	sortKey string
	text    string
}

// groupByCourse buckets every change under its course and orders sections
// Lecture first, then Seminar/Discussion/Recitation, then Lab, then the rest,
// with natural numeric ordering inside each bucket.
func groupByCourse(cs *models.ChangeSet) []courseBlock {
	type bucket struct {
		title string
		lines []sectionLine
	}
	buckets := map[string]*bucket{}

	add := func(c models.SectionChange, text string) {
		bk, ok := buckets[c.CourseCode]
		if !ok {
			bk = &bucket{title: c.CourseTitle}
			buckets[c.CourseCode] = bk
		}
		key := helpers.SectionSortKey(c.SectionCode, helpers.SectionTypeCode(c.SectionCode))
		bk.lines = append(bk.lines, sectionLine{sortKey: key, text: text})
	}

	for _, c := range cs.Added {
		add(c, fmt.Sprintf("  ✨ NEW %s: %d/%d %s", c.SectionCode, c.Enrollment, c.Capacity, c.Status))
	}
	for _, c := range cs.Removed {
		add(c, fmt.Sprintf("  ❌ REMOVED %s", c.SectionCode))
	}
	for _, c := range cs.Modified {
		add(c, formatModified(c))
	}

	codes := make([]string, 0, len(buckets))
	for code := range buckets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	blocks := make([]courseBlock, 0, len(codes))
	for _, code := range codes {
		bk := buckets[code]
		sort.Slice(bk.lines, func(i, j int) bool { return bk.lines[i].sortKey < bk.lines[j].sortKey })

		block := courseBlock{code: code, title: bk.title}
		for _, line := range bk.lines {
			block.lines = append(block.lines, line.text)
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func formatModified(c models.SectionChange) string {
	marker := "•"
	if c.Capacity > 0 && float64(abs(c.EnrollmentDelta))/float64(c.Capacity) > bigSwingRatio {
		marker = "🔺"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s: %d/%d", marker, c.SectionCode, c.Enrollment, c.Capacity)
	if c.EnrollmentDelta != 0 {
		fmt.Fprintf(&b, " (%+d)", c.EnrollmentDelta)
	}
	if c.CapacityChanged {
		fmt.Fprintf(&b, " [cap %d→%d]", c.OldCapacity, c.NewCapacity)
	}
	if c.StatusChanged() {
		fmt.Fprintf(&b, " [%s→%s]", c.OldStatus, c.Status)
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
