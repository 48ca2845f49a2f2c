// Package scanner enumerates .rng files in a folder and runs the
// parse-and-aggregate pipeline over them.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rebrag/GTOLite-Helper-Script/internal/nodes"
	"github.com/rebrag/GTOLite-Helper-Script/internal/rng"
)

// RunReport summarizes one pipeline run. Per-file and per-line failures are
// counted here rather than aborting the run.
type RunReport struct {
	BuildID      string        `json:"build_id"`
	SourceDir    string        `json:"source_dir"`
	Files        int           `json:"files"`
	FilesParsed  int           `json:"files_parsed"`
	FilesSkipped int           `json:"files_skipped"`
	LinesSkipped int           `json:"lines_skipped"`
	Nodes        int           `json:"nodes"`
	Hands        int           `json:"hands"`
	Duration     time.Duration `json:"duration_ns"`
}

// Scanner runs the sequential pipeline: enumerate, parse, aggregate.
// Each run opens, reads and closes one file at a time; there is no
// concurrent I/O anywhere in the pipeline.
type Scanner struct {
	dir        string
	aggregator *nodes.Aggregator
	log        zerolog.Logger
}

// New creates a scanner over the given folder of .rng files.
func New(dir string, aggregator *nodes.Aggregator, log zerolog.Logger) *Scanner {
	return &Scanner{
		dir:        dir,
		aggregator: aggregator,
		log:        log.With().Str("component", "scanner").Logger(),
	}
}

// Dir returns the folder the scanner reads from.
func (s *Scanner) Dir() string {
	return s.dir
}

// Run executes one pipeline pass and returns the resulting collection.
//
// Filenames are sorted before processing so the aggregator's last-write-wins
// merge is deterministic across platforms. Unreadable or undecodable files
// are skipped and counted; the run only fails when the folder cannot be
// listed or the aggregator resolves no nodes at all.
func (s *Scanner) Run() (*nodes.Collection, *RunReport, error) {
	start := time.Now()

	paths, err := filepath.Glob(filepath.Join(s.dir, "*.rng"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list range files in %s: %w", s.dir, err)
	}
	sort.Strings(paths)

	report := &RunReport{SourceDir: s.dir, Files: len(paths)}

	var sources []nodes.SourceFile
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			report.FilesSkipped++
			s.log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable range file")
			continue
		}

		name := filepath.Base(path)
		parsed, err := rng.Parse(name, data)
		if err != nil {
			var readErr *rng.ReadError
			if errors.As(err, &readErr) {
				report.FilesSkipped++
				s.log.Warn().Err(err).Str("file", path).Msg("Skipping undecodable range file")
				continue
			}
			return nil, nil, err
		}

		for _, perr := range parsed.Skipped {
			report.LinesSkipped++
			s.log.Warn().Str("file", path).Int("line", perr.Line).Str("reason", perr.Reason).Msg("Skipping malformed line pair")
		}

		report.FilesParsed++
		sources = append(sources, nodes.SourceFile{Name: name, Entries: parsed.Entries})
	}

	col, err := s.aggregator.Build(sources)
	if err != nil {
		return nil, nil, err
	}

	report.BuildID = col.BuildID
	report.Nodes = len(col.Nodes)
	report.Hands = col.HandCount()
	report.Duration = time.Since(start)

	s.log.Info().
		Str("build_id", report.BuildID).
		Int("files", report.Files).
		Int("files_parsed", report.FilesParsed).
		Int("files_skipped", report.FilesSkipped).
		Int("lines_skipped", report.LinesSkipped).
		Int("nodes", report.Nodes).
		Int("hands", report.Hands).
		Dur("duration", report.Duration).
		Msg("Range scan completed")

	return col, report, nil
}
