package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/pkg/export"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

type timetableSource interface {
	ListForDivision(ctx context.Context, divisionID int64) ([]models.ScheduleDetail, error)
	ListForTeacher(ctx context.Context, teacherID, shiftID int64) ([]models.ScheduleDetail, error)
}

type divisionLookup interface {
	Get(ctx context.Context, id int64) (*models.DivisionDetail, error)
}

type teacherLookup interface {
	Get(ctx context.Context, id int64) (*models.Teacher, error)
}

type shiftLookup interface {
	Get(ctx context.Context, id int64) (*models.Shift, error)
}

type csvRenderer interface {
	Render(grid export.Grid) ([]byte, error)
}

type pdfRenderer interface {
	Render(grid export.Grid) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	// Slots is the minimum number of rows in a grid. Later slots are added when scheduled.
	Slots int
}

// ExportFile is a rendered timetable ready to be served or saved.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders division and teacher timetables as slot by weekday grids.
type ExportService struct {
	schedules timetableSource
	divisions divisionLookup
	teachers  teacherLookup
	shifts    shiftLookup
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(schedules timetableSource, divisions divisionLookup, teachers teacherLookup, shifts shiftLookup, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedules: schedules,
		divisions: divisions,
		teachers:  teachers,
		shifts:    shifts,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
		cfg:       cfg,
	}
}

// Division renders a division timetable. Cells read "Subject / Teacher".
func (s *ExportService) Division(ctx context.Context, divisionID int64, format string) (*ExportFile, error) {
	parsed, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}
	division, err := s.divisions.Get(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.schedules.ListForDivision(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	grid := s.buildGrid(rows, func(row models.ScheduleDetail) string {
		return joinCell(row.SubjectName, row.TeacherName)
	})
	grid.Title = fmt.Sprintf("%s - %s %s (%s)", division.Name, division.PlanName, division.CycleName, division.ShiftName)
	filename := fmt.Sprintf("timetable_division_%s_%s", sanitizeFilename(division.Name), sanitizeFilename(division.ShiftName))
	return s.render(grid, filename, parsed)
}

// Teacher renders a teacher timetable within a shift. Cells read "Subject / Division".
func (s *ExportService) Teacher(ctx context.Context, teacherID, shiftID int64, format string) (*ExportFile, error) {
	parsed, err := parseExportFormat(format)
	if err != nil {
		return nil, err
	}
	teacher, err := s.teachers.Get(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	shift, err := s.shifts.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	rows, err := s.schedules.ListForTeacher(ctx, teacherID, shiftID)
	if err != nil {
		return nil, err
	}

	grid := s.buildGrid(rows, func(row models.ScheduleDetail) string {
		return joinCell(row.SubjectName, row.DivisionName)
	})
	grid.Title = fmt.Sprintf("%s (%s)", teacher.Name, shift.Name)
	filename := fmt.Sprintf("timetable_teacher_%s_%s", sanitizeFilename(teacher.Name), sanitizeFilename(shift.Name))
	return s.render(grid, filename, parsed)
}

func (s *ExportService) render(grid export.Grid, filename string, format export.Format) (*ExportFile, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case export.FormatPDF:
		payload, err = s.pdf.Render(grid)
	default:
		payload, err = s.csv.Render(grid)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	s.logger.Debug("timetable rendered", zap.String("filename", filename), zap.String("format", string(format)), zap.Int("bytes", len(payload)))
	return &ExportFile{
		Filename:    filename + "." + string(format),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

// buildGrid lays rows out as slot lines by weekday columns. Several rows sharing a cell are
// joined with "; ".
func (s *ExportService) buildGrid(rows []models.ScheduleDetail, label func(models.ScheduleDetail) string) export.Grid {
	slots := s.cfg.Slots
	for _, row := range rows {
		if row.Slot > slots {
			slots = row.Slot
		}
	}

	cells := make(map[int]map[int][]string, slots)
	for _, row := range rows {
		day := models.WeekdayIndex(row.Day)
		if day < 0 {
			continue
		}
		if cells[row.Slot] == nil {
			cells[row.Slot] = make(map[int][]string)
		}
		text := label(row)
		if text == "" {
			text = "-"
		}
		cells[row.Slot][day] = append(cells[row.Slot][day], text)
	}

	grid := export.Grid{Headers: append([]string{"Slot"}, models.Weekdays...)}
	for slot := 1; slot <= slots; slot++ {
		line := make([]string, len(grid.Headers))
		line[0] = strconv.Itoa(slot)
		for day, labels := range cells[slot] {
			sort.Strings(labels)
			line[day+1] = strings.Join(labels, "; ")
		}
		grid.Rows = append(grid.Rows, line)
	}
	return grid
}

func parseExportFormat(raw string) (export.Format, error) {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return format, nil
}

func joinCell(parts ...*string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != nil && *part != "" {
			values = append(values, *part)
		}
	}
	return strings.Join(values, " / ")
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
