// Package mrrel reads pipe-delimited MRREL.RRF relationship dumps. It is the
// only I/O-bearing stage of the analysis pipeline; everything downstream
// works on in-memory records.
package mrrel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/umlstools/relcheck/internal/model"
)

// MRREL.RRF column offsets for the fields the checker uses:
// CUI1|AUI1|STYPE1|REL|CUI2|...
const (
	colCUI1 = 0
	colREL  = 3
	colCUI2 = 4

	minFields = 5
)

// Handler receives each well-formed record as it is parsed.
type Handler func(model.Record)

// ReadStats summarizes one pass over the input.
type ReadStats struct {
	TotalRecords  int      // non-empty lines seen
	Skipped       int      // malformed rows excluded from classification
	RelationCodes []string // distinct REL values, sorted
}

// ReadFile streams records from an MRREL.RRF file. Malformed rows (fewer
// than five fields, or blank CUI1/REL/CUI2) are counted and skipped, never
// fatal.
func ReadFile(path string, handle Handler) (*ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f, handle)
}

// Read streams records from r. See ReadFile.
func Read(r io.Reader, handle Handler) (*ReadStats, error) {
	stats := &ReadStats{}
	codes := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	// MRREL rows can be long; the default token limit is too small for
	// dumps with verbose attribute columns.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.TotalRecords++

		parts := strings.Split(line, "|")
		if len(parts) < minFields {
			stats.Skipped++
			continue
		}

		rec := model.Record{
			CUI1: strings.TrimSpace(parts[colCUI1]),
			REL:  strings.TrimSpace(parts[colREL]),
			CUI2: strings.TrimSpace(parts[colCUI2]),
		}
		if rec.CUI1 == "" || rec.REL == "" || rec.CUI2 == "" {
			stats.Skipped++
			continue
		}

		codes[rec.REL] = true
		handle(rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	stats.RelationCodes = make([]string, 0, len(codes))
	for code := range codes {
		stats.RelationCodes = append(stats.RelationCodes, code)
	}
	sort.Strings(stats.RelationCodes)

	return stats, nil
}
