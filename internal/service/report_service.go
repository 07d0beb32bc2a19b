package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
	"github.com/smp-yps/assignment-api/pkg/export"
)

// ReportFormat selects the rendering of a generated report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type reportAssignmentStore interface {
	ListUngradedDetails(ctx context.Context) ([]models.AssignmentDetail, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportService renders the ungraded-assignments report for admins.
type ReportService struct {
	assignments reportAssignmentStore
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
	schoolName  string
}

// NewReportService constructs the service.
func NewReportService(assignments reportAssignmentStore, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, schoolName string) *ReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{assignments: assignments, csv: csv, pdf: pdf, logger: logger, schoolName: schoolName}
}

// Ungraded renders every ungraded assignment as a downloadable file in
// the requested format.
func (s *ReportService) Ungraded(ctx context.Context, format ReportFormat) ([]byte, string, error) {
	details, err := s.assignments.ListUngradedDetails(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ungraded assignments")
	}

	dataset := export.Dataset{
		Headers: []string{"Subject", "Learning Goal", "Type", "Class", "Teacher", "Assigned Date", "Week"},
		Rows:    make([]map[string]string, 0, len(details)),
	}
	for _, d := range details {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Subject":       d.Subject,
			"Learning Goal": d.LearningGoal,
			"Type":          string(d.Type),
			"Class":         strconv.Itoa(d.ClassGrade) + d.ClassName,
			"Teacher":       d.TeacherName,
			"Assigned Date": d.AssignedDate.Format("02/01/2006"),
			"Week":          fmt.Sprintf("%d/%d", d.WeekNumber, d.Year),
		})
	}

	switch format {
	case ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return payload, "text/csv", nil
	case ReportFormatPDF:
		title := "Tugas Belum Dinilai - " + s.schoolName
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported report format: "+string(format))
	}
}
