// Package export turns the rows of a list view into downloadable CSV or XLSX files.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/incubation-console/internal"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Table is a fully rendered view: one header per column and rows in display order.
type Table struct {
	Headers []string
	Rows    [][]string
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", internal.NewValidationFieldError("format", fmt.Sprintf("unsupported export format %q", s), internal.ErrCodeInvalidFormat)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

// Filename returns "<entity>_<YYYY-MM-DD>.<ext>" for the given day.
func Filename(entity string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", entity, now.Format("2006-01-02"), f)
}

// Render encodes t in format f.
func Render(t Table, f Format, sheet string) ([]byte, error) {
	switch f {
	case FormatCSV:
		return WriteCSV(t), nil
	case FormatXLSX:
		return WriteXLSX(t, sheet)
	}
	return nil, internal.NewValidationFieldError("format", fmt.Sprintf("unsupported export format %q", f), internal.ErrCodeInvalidFormat)
}
