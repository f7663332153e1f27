package insights

import "errors"

// Sentinel errors for the insights service layer.
var (
	ErrExportInProgress = errors.New("an identical export is already running")
	ErrExportDisabled   = errors.New("report export is not configured")
	ErrReportNotFound   = errors.New("report not found")
)
