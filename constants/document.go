package constants

// DocumentTypes holds the accepted values for a stored document's type field.
var DocumentTypes = []string{
	"prescription",
	"lab_report",
	"scan",
	"discharge_summary",
	"invoice",
	"other",
}

// DefaultDocumentType is used when the uploader does not classify the document.
const DefaultDocumentType = "other"

// IsDocumentType reports whether t is a known document type.
func IsDocumentType(t string) bool {
	for _, dt := range DocumentTypes {
		if dt == t {
			return true
		}
	}
	return false
}
