package domain

// NoticeLevel is the severity of a panel notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice codes surfaced to users. None of them stops the report.
const (
	CodeNoIndexColumns   = "NO_INDEX_COLUMNS"
	CodeEntityNotFound   = "ENTITY_NOT_FOUND"
	CodeYearNotFound     = "YEAR_NOT_FOUND"
	CodeEmptySubset      = "EMPTY_SUBSET"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeDuplicateYear    = "DUPLICATE_YEAR"
	CodeScopeFallback    = "SCOPE_FALLBACK"
)

// Notice is a soft warning attached to one panel of the report
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// Warning builds a warning-level notice
func Warning(code, message string) Notice {
	return Notice{Level: NoticeWarning, Code: code, Message: message}
}

// Info builds an info-level notice
func Info(code, message string) Notice {
	return Notice{Level: NoticeInfo, Code: code, Message: message}
}
