package fide

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/okian/fideboard/internal/domain/model"
)

// MonthCode renders the list month as used in FIDE file names, e.g. "oct25".
func MonthCode(t time.Time) string {
	return strings.ToLower(t.Format("Jan06"))
}

// ParseMonthCode returns the first day of the month named by code.
func ParseMonthCode(code string) (time.Time, error) {
	t, err := time.Parse("Jan06", strings.TrimSpace(code))
	if err != nil || len(strings.TrimSpace(code)) != 5 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMonthCode, code)
	}
	return model.Month(t), nil
}

// MonthCodes lists the codes from the month of from to the month of to, inclusive.
func MonthCodes(from, to time.Time) []string {
	var out []string
	for m := model.Month(from); !m.After(model.Month(to)); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthCode(m))
	}
	return out
}

// ListFileName is the text file name of a standard list.
func ListFileName(code string) string { return "standard_" + code + "frl.txt" }

// ArchiveFileName is the download archive name of a standard list.
func ArchiveFileName(code string) string { return "standard_" + code + "frl.zip" }

var listFileRe = regexp.MustCompile(`(?i)^standard_([a-z]{3}\d{2})frl(?:_xml)?\.txt$`)

// DateFromFileName returns the list month encoded in a standard list file name.
func DateFromFileName(path string) (time.Time, error) {
	m := listFileRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrFileName, filepath.Base(path))
	}
	return ParseMonthCode(strings.ToLower(m[1]))
}
