package export

import (
	"errors"
	"fmt"
)

// ErrExportInProgress is returned when an export is already running on the
// same Exporter.
var ErrExportInProgress = errors.New("export already in progress")

// CaptureError reports that the log sheet could not be rasterized. Nothing
// is saved when it occurs; callers may retry.
type CaptureError struct {
	Reason string
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture log sheet: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("capture log sheet: %s", e.Reason)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
