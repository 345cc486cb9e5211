package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/helpers"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

// Column headers of the registrar feed.
const (
	colCourseCode  = "Course Abbr"
	colCourseTitle = "Course Title"
	colSection     = "S/T"
	colInstructor  = "Instructor"
	colEnrollment  = "Enr"
	colCapacity    = "Cap"
	colLevel       = "Level"
)

// undergraduateLevel filters the feed to the rows the tracker cares about.
const undergraduateLevel = "UG"

// ParseFile reads a downloaded feed file into an observation batch.
func ParseFile(path string) ([]models.SectionObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewTransportError("failed to open feed file", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the registrar CSV feed. Only undergraduate rows with positive
// capacity are kept; rows with unparsable counts are skipped with a warning
// rather than aborting the batch.
func Parse(r io.Reader) ([]models.SectionObservation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewValidationError("feed has no header row")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colCourseCode, colSection, colEnrollment, colCapacity, colLevel} {
		if _, ok := columns[required]; !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("feed is missing the %q column", required))
		}
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var observations []models.SectionObservation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("Skipping malformed feed row")
			continue
		}

		if field(record, colLevel) != undergraduateLevel {
			continue
		}

		enrollment, err := strconv.Atoi(field(record, colEnrollment))
		if err != nil {
			logger.Warn().Int("line", line).Msg("Skipping row with unparsable enrollment")
			continue
		}
		capacity, err := strconv.Atoi(field(record, colCapacity))
		if err != nil {
			logger.Warn().Int("line", line).Msg("Skipping row with unparsable capacity")
			continue
		}
		if capacity <= 0 {
			continue
		}

		sectionCode := field(record, colSection)
		if sectionCode == "" || field(record, colCourseCode) == "" {
			continue
		}

		observations = append(observations, models.SectionObservation{
			CourseCode:  field(record, colCourseCode),
			CourseTitle: field(record, colCourseTitle),
			SectionCode: sectionCode,
			SectionType: models.SectionTypeFromCode(helpers.SectionTypeCode(sectionCode)),
			Instructor:  field(record, colInstructor),
			Enrollment:  enrollment,
			Capacity:    capacity,
		})
	}

	if len(observations) == 0 {
		return nil, apperrors.NewValidationError("feed contained no usable rows")
	}
	return observations, nil
}
