package extract

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Content types understood by the extractor.
const (
	TypePDF  = "application/pdf"
	TypeCSV  = "text/csv"
	TypeJSON = "application/json"
)

var extensionTypes = map[string]string{
	".pdf":  TypePDF,
	".csv":  TypeCSV,
	".json": TypeJSON,
}

// DetectContentType resolves the statement format from a declared content type,
// the file extension and, as a last resort, the leading bytes.
// Returns "" when the format is not one the extractor handles.
func DetectContentType(filename, declared string, head []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			switch mt {
			case TypePDF, TypeCSV, TypeJSON:
				return mt
			case "application/csv", "text/comma-separated-values":
				return TypeCSV
			}
		}
	}

	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}

	if len(head) > 512 {
		head = head[:512]
	}
	if http.DetectContentType(head) == TypePDF {
		return TypePDF
	}
	trimmed := strings.TrimSpace(string(head))
	if strings.HasPrefix(trimmed, "[") {
		return TypeJSON
	}
	return ""
}

// IsSupported reports whether filename has an extension the extractor handles.
func IsSupported(filename string) bool {
	_, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}
