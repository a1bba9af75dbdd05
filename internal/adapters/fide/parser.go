// Package fide reads FIDE monthly standard rating lists: the fixed-width text
// format, the month codes used in their file names, and the download archive.
package fide

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/okian/fideboard/internal/domain/model"
	"golang.org/x/text/encoding/charmap"
)

// DefaultMinRating is the rating a player needs to enter the store.
const DefaultMinRating = 2500

// Column layout of the text list. Offsets are in bytes of the latin-1 source.
const (
	minLineLength = 122
	minBirthYear  = 1900
)

type column struct{ from, to int }

var (
	colID         = column{0, 15}
	colName       = column{15, 76}
	colFederation = column{76, 79}
	colSex        = column{79, 80}
	colTitle      = column{80, 83}
	colRating     = column{113, 117}
	colBirthday   = column{126, 130}
)

func (c column) of(line []byte) []byte {
	if c.from >= len(line) {
		return nil
	}
	to := c.to
	if to > len(line) {
		to = len(line)
	}
	return bytes.TrimSpace(line[c.from:to])
}

// ParseOptions filters the parsed list.
type ParseOptions struct {
	// MinRating drops players rated below it unless they are in Known.
	MinRating int
	Known     map[string]struct{}
	// MaxBirthYear bounds plausible birth years; zero means the current year.
	MaxBirthYear int
}

// ParseSummary counts what happened to each data line.
type ParseSummary struct {
	Lines            int `json:"lines"`
	Valid            int `json:"valid"`
	SkippedInvalid   int `json:"skipped_invalid"`
	SkippedLowRating int `json:"skipped_low_rating"`
}

// Parse reads a rating list. The first line is a header and is skipped.
func Parse(r io.Reader, opts ParseOptions) ([]model.RatingEntry, ParseSummary, error) {
	var (
		out []model.RatingEntry
		sum ParseSummary
	)
	maxBirth := opts.MaxBirthYear
	if maxBirth == 0 {
		maxBirth = time.Now().Year()
	}
	dec := charmap.ISO8859_1.NewDecoder()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 512), 64*1024)
	header := true
	for sc.Scan() {
		line := bytes.TrimRight(sc.Bytes(), "\r")
		if header {
			header = false
			continue
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		sum.Lines++

		e, ok := parseLine(line, dec.Bytes, maxBirth)
		if !ok {
			sum.SkippedInvalid++
			continue
		}
		if e.Rating < opts.MinRating {
			if _, known := opts.Known[e.ID]; !known {
				sum.SkippedLowRating++
				continue
			}
		}
		out = append(out, e)
		sum.Valid++
	}
	if err := sc.Err(); err != nil {
		return nil, sum, fmt.Errorf("read rating list: %w", err)
	}
	return out, sum, nil
}

func parseLine(line []byte, decode func([]byte) ([]byte, error), maxBirth int) (model.RatingEntry, bool) {
	if len(line) < minLineLength {
		return model.RatingEntry{}, false
	}
	id := string(colID.of(line))
	rawName := colName.of(line)
	ratingStr := colRating.of(line)
	if id == "" || len(rawName) == 0 || len(ratingStr) == 0 {
		return model.RatingEntry{}, false
	}
	rating, err := strconv.Atoi(string(ratingStr))
	if err != nil {
		return model.RatingEntry{}, false
	}
	name, err := decode(rawName)
	if err != nil {
		return model.RatingEntry{}, false
	}

	e := model.RatingEntry{
		ID:         id,
		Name:       string(name),
		Federation: string(colFederation.of(line)),
		Sex:        string(colSex.of(line)),
		Title:      string(colTitle.of(line)),
		Rating:     rating,
	}
	if b := colBirthday.of(line); len(b) >= 4 {
		if y, err := strconv.Atoi(string(b[:4])); err == nil && y >= minBirthYear && y <= maxBirth {
			e.BirthYear = &y
		}
	}
	return e, true
}

// QualifyingIDs returns the ids of players rated at least minRating, without
// building full entries. It is the cheap first pass of a multi-file seed.
func QualifyingIDs(r io.Reader, minRating int) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 512), 64*1024)
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		line := sc.Bytes()
		if len(line) < minLineLength {
			continue
		}
		rating, err := strconv.Atoi(string(colRating.of(line)))
		if err != nil || rating < minRating {
			continue
		}
		if id := colID.of(line); len(id) > 0 {
			ids[string(id)] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rating list: %w", err)
	}
	return ids, nil
}
