package rng

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// evScale converts raw solver EV units to the display scale used by the
// original tooling (chips / 2000).
const evScale = 2000.0

// Entry is one parsed hand line pair: the hand's frequency for the file's
// action and the action's normalized EV.
type Entry struct {
	Hand   string  `json:"hand"`
	Weight float64 `json:"weight"`
	EV     float64 `json:"ev"`
}

// File is the result of parsing one .rng file. Skipped collects the line
// pairs that failed to parse; a file with entries and skips is a normal
// partial result, not an error.
type File struct {
	Name    string
	Entries []Entry
	Skipped []*ParseError
}

// Parse converts the contents of one .rng file into hand entries.
//
// The grammar is alternating line pairs: a hand label, then
// "<weight>[;<ev>]". Blank lines are ignored. Malformed pairs are recorded
// in File.Skipped and parsing continues. Empty content is a valid empty
// result. The only fatal condition is content that is not valid UTF-8 text,
// reported as *ReadError.
func Parse(name string, data []byte) (*File, error) {
	if !utf8.Valid(data) {
		return nil, &ReadError{File: name, Err: fmt.Errorf("content is not valid UTF-8")}
	}

	f := &File{Name: name}

	lines := strings.Split(string(data), "\n")
	i := 0
	for i < len(lines) {
		handLine := strings.TrimSpace(lines[i])
		handLineNo := i + 1
		i++
		if handLine == "" {
			continue
		}

		// Advance to the data line, tolerating blank lines in between.
		var dataLine string
		dataLineNo := 0
		for i < len(lines) {
			dataLine = strings.TrimSpace(lines[i])
			dataLineNo = i + 1
			i++
			if dataLine != "" {
				break
			}
		}
		if dataLine == "" {
			f.Skipped = append(f.Skipped, &ParseError{
				File:   name,
				Line:   handLineNo,
				Text:   handLine,
				Reason: "hand label without data line",
			})
			break
		}

		entry, perr := parsePair(name, handLine, handLineNo, dataLine, dataLineNo)
		if perr != nil {
			f.Skipped = append(f.Skipped, perr)
			continue
		}
		f.Entries = append(f.Entries, entry)
	}

	return f, nil
}

// parsePair interprets one hand/data line pair.
func parsePair(file, handLine string, handLineNo int, dataLine string, dataLineNo int) (Entry, *ParseError) {
	if !IsHand(handLine) {
		return Entry{}, &ParseError{
			File:   file,
			Line:   handLineNo,
			Text:   handLine,
			Reason: "not a known starting hand",
		}
	}

	parts := strings.Split(dataLine, ";")
	if len(parts) > 2 {
		return Entry{}, &ParseError{
			File:   file,
			Line:   dataLineNo,
			Text:   dataLine,
			Reason: "expected <weight>[;<ev>]",
		}
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Entry{}, &ParseError{
			File:   file,
			Line:   dataLineNo,
			Text:   dataLine,
			Reason: "invalid weight",
		}
	}
	if weight < 0 || weight > 1 {
		return Entry{}, &ParseError{
			File:   file,
			Line:   dataLineNo,
			Text:   dataLine,
			Reason: "weight outside [0,1]",
		}
	}

	// EV is optional; files written before EV tracking omit it.
	ev := 0.0
	if len(parts) == 2 {
		raw, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return Entry{}, &ParseError{
				File:   file,
				Line:   dataLineNo,
				Text:   dataLine,
				Reason: "invalid ev",
			}
		}
		ev = raw / evScale
	}

	return Entry{Hand: handLine, Weight: weight, EV: ev}, nil
}
