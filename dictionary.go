package dcmtrace

import (
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Keyword returns the dictionary keyword for `t`, e.g. "PatientName" for
// (0010,0010). Private and unknown tags return false.
func Keyword(t Tag) (string, bool) {
	info, err := tag.Find(tag.Tag{Group: t.Group, Element: t.Element})
	if err != nil || info.Name == "" {
		return "", false
	}
	return info.Name, true
}

// annotation returns the " # Keyword" suffix for trace lines, or "" when
// annotation is disabled or the tag is unknown.
func annotation(enabled bool, t Tag) string {
	if !enabled {
		return ""
	}
	if kw, ok := Keyword(t); ok {
		return " # " + kw
	}
	return ""
}
