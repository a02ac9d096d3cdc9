package service

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/courthive/tods-scheduling-api/internal/models"
	appErrors "github.com/courthive/tods-scheduling-api/pkg/errors"
	"github.com/courthive/tods-scheduling-api/pkg/export"
)

// Export formats supported for run audits.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportService renders run audits into downloadable documents.
type ExportService struct {
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService wires the tabular exporters.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// RenderAudit renders the audit's committed assignments plus its unplaced
// matchUps as one table. Returns the document bytes and a content type.
func (s *ExportService) RenderAudit(audit *models.SchedulingAudit, format string) ([]byte, string, error) {
	if audit == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "no audit to export")
	}

	data := auditDataset(audit)

	switch strings.ToLower(format) {
	case ExportFormatCSV, "":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(data, "Schedule "+audit.Date)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
}

func auditDataset(audit *models.SchedulingAudit) export.Dataset {
	data := export.Dataset{
		Headers: []string{"MatchUp", "Date", "Time", "Venue", "Court", "Outcome"},
	}

	for _, commit := range audit.Commits {
		data.Rows = append(data.Rows, map[string]string{
			"MatchUp": commit.MatchUpID,
			"Date":    commit.ScheduledDate,
			"Time":    commit.ScheduledTime,
			"Venue":   commit.VenueID,
			"Court":   commit.CourtID,
			"Outcome": "scheduled",
		})
	}
	for _, id := range audit.NoTimeMatchUpIDs {
		data.Rows = append(data.Rows, map[string]string{
			"MatchUp": id,
			"Date":    audit.Date,
			"Outcome": "no time",
		})
	}
	for _, id := range audit.OverLimitMatchUpIDs {
		data.Rows = append(data.Rows, map[string]string{
			"MatchUp": id,
			"Date":    audit.Date,
			"Outcome": "daily limit",
		})
	}

	data.Rows = append(data.Rows, map[string]string{
		"MatchUp": "run " + audit.RunID,
		"Date":    audit.Date,
		"Outcome": "iterations " + strconv.Itoa(audit.Iterations),
	})

	return data
}
