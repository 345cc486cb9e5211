package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/yigit/coursewatch/internal/app/models"
	"github.com/yigit/coursewatch/internal/config"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

// The dashboard export uses short JSON keys because the browser client
// fetches the whole document on every page load. The mapping is fixed:
//
//	i   snapshot index          ce  current enrollment
//	e   enrollment              cc  current capacity
//	c   capacity                cf  current fill
//	f   fill                    af  course average fill
//	h   section history         s   course section map
//	d   department              in  instructor
//	t   section type            ti  course title
//	if  is-filled               sid section id
//	lrt last report time        sn  snapshot array
//	ts  timestamp               of  overall fill
//	cr  course map              sem semester label
//	sems semester list          as  active semester
//	sd  per-semester data       md  per-semester milestones

// HistoryPointExport is one section state in one snapshot.
type HistoryPointExport struct {
	Index      int     `json:"i"`
	Enrollment int     `json:"e"`
	Capacity   int     `json:"c"`
	Fill       float64 `json:"f"`
}

// SectionExport is one section's current state plus its full history.
type SectionExport struct {
	SectionID  int64                `json:"sid"`
	Enrollment int                  `json:"ce"`
	Capacity   int                  `json:"cc"`
	Fill       float64              `json:"cf"`
	Instructor string               `json:"in,omitempty"`
	Type       string               `json:"t"`
	Filled     bool                 `json:"if"`
	History    []HistoryPointExport `json:"h"`
}

// CourseExport groups a course's sections with its running average fill.
type CourseExport struct {
	Title       string                    `json:"ti,omitempty"`
	Department  string                    `json:"d,omitempty"`
	AverageFill float64                   `json:"af"`
	Sections    map[string]*SectionExport `json:"s"`
}

// SnapshotExport is one snapshot's position in the chart's x axis.
type SnapshotExport struct {
	Index       int     `json:"i"`
	Timestamp   string  `json:"ts"`
	OverallFill float64 `json:"of"`
}

// SemesterExport is the single-semester dashboard document.
type SemesterExport struct {
	Semester       string                   `json:"sem"`
	LastReportTime string                   `json:"lrt,omitempty"`
	Snapshots      []SnapshotExport         `json:"sn"`
	Courses        map[string]*CourseExport `json:"cr"`
}

// MilestoneExport marks a registration calendar event on the chart.
type MilestoneExport struct {
	Timestamp string `json:"ts"`
	Label     string `json:"l"`
	Color     string `json:"c,omitempty"`
}

// MultiSemesterExport is the full dashboard document across semesters.
type MultiSemesterExport struct {
	Semesters      []string                     `json:"sems"`
	ActiveSemester string                       `json:"as"`
	Data           map[string]*SemesterExport   `json:"sd"`
	Milestones     map[string][]MilestoneExport `json:"md"`
}

// SnapshotExportSource is the snapshot-repository surface the export uses.
type SnapshotExportSource interface {
	ListBySemester(ctx context.Context, semester string) ([]models.Snapshot, error)
	GetView(ctx context.Context, snapshotID int64) (*models.SnapshotView, error)
}

// ExportService projects store contents into the dashboard document. Pure
// read-only: derivable at any time solely from stored snapshots.
type ExportService struct {
	snapshots SnapshotExportSource
	log       ReportLogReader
	cfg       *config.Config
}

// NewExportService creates a new ExportService
func NewExportService(snapshots SnapshotExportSource, log ReportLogReader, cfg *config.Config) *ExportService {
	return &ExportService{snapshots: snapshots, log: log, cfg: cfg}
}

// ExportSemester builds the single-semester document.
func (s *ExportService) ExportSemester(ctx context.Context, semester string) (*SemesterExport, error) {
	snapshots, err := s.snapshots.ListBySemester(ctx, semester)
	if err != nil {
		return nil, err
	}

	views := make([]*models.SnapshotView, 0, len(snapshots))
	for _, snapshot := range snapshots {
		view, err := s.snapshots.GetView(ctx, snapshot.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	lastReport, err := s.log.LastReportTimestamp(ctx)
	if err != nil {
		return nil, err
	}

	return BuildSemesterExport(semester, lastReport, views), nil
}

// ExportAll builds the multi-semester document from the configured semester
// list, with the configured registration milestones attached.
func (s *ExportService) ExportAll(ctx context.Context) (*MultiSemesterExport, error) {
	export := &MultiSemesterExport{
		Semesters:      s.cfg.Semesters,
		ActiveSemester: s.cfg.Active(),
		Data:           make(map[string]*SemesterExport, len(s.cfg.Semesters)),
		Milestones:     make(map[string][]MilestoneExport),
	}

	for _, semester := range s.cfg.Semesters {
		semesterExport, err := s.ExportSemester(ctx, semester)
		if err != nil {
			return nil, err
		}
		export.Data[semester] = semesterExport
	}

	for semester, milestones := range s.cfg.Milestones {
		for _, m := range milestones {
			export.Milestones[semester] = append(export.Milestones[semester], MilestoneExport{
				Timestamp: m.Time,
				Label:     m.Label,
				Color:     m.Color,
			})
		}
	}
	return export, nil
}

// WriteFile writes the multi-semester document to path as JSON.
func (s *ExportService) WriteFile(ctx context.Context, path string) error {
	export, err := s.ExportAll(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(export)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Dashboard export written")
	return nil
}

// BuildSemesterExport assembles the document from chronologically ordered
// snapshot views. Pure; statuses are recomputed with the same classifier the
// ingestor uses so display banding never disagrees with stored state.
func BuildSemesterExport(semester, lastReport string, views []*models.SnapshotView) *SemesterExport {
	export := &SemesterExport{
		Semester:       semester,
		LastReportTime: lastReport,
		Snapshots:      make([]SnapshotExport, 0, len(views)),
		Courses:        make(map[string]*CourseExport),
	}

	for index, view := range views {
		export.Snapshots = append(export.Snapshots, SnapshotExport{
			Index:       index,
			Timestamp:   view.Timestamp,
			OverallFill: view.OverallFill,
		})

		for courseCode, course := range view.Courses {
			courseExport, ok := export.Courses[courseCode]
			if !ok {
				courseExport = &CourseExport{
					Title:    course.Title,
					Sections: make(map[string]*SectionExport),
				}
				export.Courses[courseCode] = courseExport
			}
			if course.Title != "" {
				courseExport.Title = course.Title
			}

			for sectionCode, section := range course.Sections {
				sectionExport, ok := courseExport.Sections[sectionCode]
				if !ok {
					sectionExport = &SectionExport{SectionID: section.SectionID, Type: string(section.Type)}
					courseExport.Sections[sectionCode] = sectionExport
				}

				// Latest sighting wins for the current state.
				sectionExport.Enrollment = section.Enrollment
				sectionExport.Capacity = section.Capacity
				sectionExport.Fill = section.Fill
				sectionExport.Instructor = section.Instructor
				sectionExport.Type = string(section.Type)
				sectionExport.Filled = models.ClassifyFill(section.Fill) == models.StatusFull
				sectionExport.History = append(sectionExport.History, HistoryPointExport{
					Index:      index,
					Enrollment: section.Enrollment,
					Capacity:   section.Capacity,
					Fill:       section.Fill,
				})
			}
		}
	}

	for courseCode, courseExport := range export.Courses {
		var sum float64
		for _, sectionExport := range courseExport.Sections {
			sum += sectionExport.Fill
		}
		if len(courseExport.Sections) > 0 {
			courseExport.AverageFill = sum / float64(len(courseExport.Sections))
		}
		if courseExport.Department == "" {
			courseExport.Department = departmentOf(courseCode)
		}
	}

	sort.Slice(export.Snapshots, func(i, j int) bool {
		return export.Snapshots[i].Index < export.Snapshots[j].Index
	})
	return export
}

func departmentOf(courseCode string) string {
	for i, r := range courseCode {
		if r == ' ' || (r >= '0' && r <= '9') {
			return courseCode[:i]
		}
	}
	return courseCode
}
