package services

import "time"

// exportFilePrefix + current date (UTC) is the download filename convention.
const exportFilePrefix = "ramp-it-up-data-"

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService turns a filter into a downloadable CSV document.
type ExportService struct {
	views *ViewService
	now   func() time.Time
}

func NewExportService(views *ViewService) *ExportService {
	return &ExportService{views: views, now: time.Now}
}

// ExportCSV projects the filtered rows and renders them for download.
func (s *ExportService) ExportCSV(f Filter) *ExportResult {
	rows := s.views.Project(f)
	return &ExportResult{
		Filename:    exportFilePrefix + s.now().UTC().Format("2006-01-02") + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        RowsToCSV(rows),
	}
}
