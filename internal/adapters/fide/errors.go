package fide

import "errors"

// Sentinel kinds for rating list errors.
var (
	ErrMonthCode = errors.New("invalid month code")
	ErrFileName  = errors.New("not a standard rating list file name")
	ErrDownload  = errors.New("rating list download failed")
	ErrArchive   = errors.New("rating list archive has no list")
)
