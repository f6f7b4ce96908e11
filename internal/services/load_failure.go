package services

import (
	"errors"
	"fmt"
	"strings"

	"dtindex/internal/dataset"
	apperrors "dtindex/internal/errors"
)

// LoadFailure describes why the dataset could not be served. It is shown in
// place of every panel and by the readiness probe.
type LoadFailure struct {
	Message        string   `json:"message"`
	Path           string   `json:"path"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	Attempts       []string `json:"attempts,omitempty"`
	WorkingDir     string   `json:"working_dir,omitempty"`
	Listing        []string `json:"listing,omitempty"`
	Cause          error    `json:"-"`
}

func (f *LoadFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Message, f.Cause)
}

// Unwrap exposes ErrDatasetUnavailable and the underlying cause.
func (f *LoadFailure) Unwrap() []error {
	return []error{ErrDatasetUnavailable, f.Cause}
}

// AppError converts the failure into the 503 problem returned by the API. A
// file no strategy could read is a parsing error; anything else is a data
// error. The directory listing is only exposed in development mode.
func (f *LoadFailure) AppError() *apperrors.AppError {
	newErr := apperrors.NewDataError
	if errors.Is(f.Cause, dataset.ErrUnreadable) {
		newErr = apperrors.NewParsingError
	}
	e := newErr(f.Message, f).
		WithContext("path", f.Path).
		WithContext("working_dir", f.WorkingDir).
		WithDebugContext("listing", f.Listing)
	if len(f.MissingColumns) > 0 {
		e.WithContext("missing_columns", f.MissingColumns)
	}
	if len(f.Attempts) > 0 {
		e.WithContext("attempts", f.Attempts)
	}
	return e
}

// newLoadFailure classifies a Load or schema error.
func newLoadFailure(path string, err error) *LoadFailure {
	f := &LoadFailure{Path: path, Cause: err}

	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		f.WorkingDir, f.Listing = loadErr.WorkingDir, loadErr.Listing
		for _, a := range loadErr.Attempts {
			f.Attempts = append(f.Attempts, a.Error())
		}
	} else {
		f.WorkingDir, f.Listing = dataset.Diagnose()
	}

	var schemaErr *dataset.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		f.MissingColumns = schemaErr.Missing
		f.Message = fmt.Sprintf("数据缺少必要的列：%s", strings.Join(schemaErr.Missing, "、"))
	case errors.Is(err, dataset.ErrFileNotFound):
		f.Message = fmt.Sprintf("找不到数据文件：%s", path)
	case errors.Is(err, dataset.ErrUnreadable):
		f.Message = fmt.Sprintf("无法读取数据文件：%s", path)
	default:
		f.Message = fmt.Sprintf("加载数据失败：%s", path)
	}
	return f
}
