// Package colortable loads and writes the CSV tables mapping defect class
// labels to mask colors and class codes.
//
// The format is one class per row:
//
//	label,color,code,aliases
//
// color is a hex string ("#RRGGBB" or "#RRGGBBAA", '#' optional), code is
// the class code in 1..255, and aliases is an optional ';'-separated list
// of alternative names. An optional header row, blank lines and lines
// starting with '#' are skipped. Semantic validation (duplicate codes,
// ambiguous colors) happens when the entries are built into a
// datmant.ColorTable.
package colortable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alphacontrollab/datmant"
)

// header is the optional first row of a table file, also emitted by Write.
var header = []string{"label", "color", "code", "aliases"}

// Default returns the legacy two-class table used by the annotation
// stations before configurable tables: red surface updates exported as
// code 1 and blue defect marks exported as code 2.
func Default() []datmant.ClassEntry {
	return []datmant.ClassEntry{
		{Label: "surface", Color: datmant.RGBA8{R: 255, A: 99}, Code: 1, Aliases: []string{"mask"}},
		{Label: "defect", Color: datmant.RGBA8{B: 255, A: 99}, Code: 2},
	}
}

// Load reads a color table from a CSV file.
func Load(path string) ([]datmant.ClassEntry, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("colortable: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("colortable: %s: %w", path, err)
	}
	return entries, nil
}

// LoadTable reads a color table file and builds the validated codec table
// with the given matching tolerance.
func LoadTable(path string, tolerance uint8) (*datmant.ColorTable, error) {
	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	return datmant.NewColorTable(entries, tolerance)
}

// Parse reads color table rows from r.
func Parse(r io.Reader) ([]datmant.ClassEntry, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1 // the aliases column may be absent
	cr.TrimLeadingSpace = true

	var entries []datmant.ClassEntry
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		if len(entries) == 0 && isHeader(row) {
			continue
		}

		e, err := parseRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", datmant.ErrInvalidTable)
	}
	return entries, nil
}

func parseRow(row []string) (datmant.ClassEntry, error) {
	if len(row) < 3 || len(row) > 4 {
		return datmant.ClassEntry{}, fmt.Errorf("%w: want label,color,code[,aliases], got %d fields",
			datmant.ErrInvalidTable, len(row))
	}

	label := strings.TrimSpace(row[0])

	color, err := datmant.ParseHex(strings.TrimSpace(row[1]))
	if err != nil {
		return datmant.ClassEntry{}, fmt.Errorf("%w: %v", datmant.ErrInvalidTable, err)
	}

	code, err := strconv.ParseUint(strings.TrimSpace(row[2]), 10, 8)
	if err != nil {
		return datmant.ClassEntry{}, fmt.Errorf("%w: class code %q", datmant.ErrInvalidTable, row[2])
	}

	var aliases []string
	if len(row) == 4 {
		for _, a := range strings.Split(row[3], ";") {
			if a = strings.TrimSpace(a); a != "" {
				aliases = append(aliases, a)
			}
		}
	}

	return datmant.ClassEntry{
		Label:   label,
		Color:   color,
		Code:    uint8(code),
		Aliases: aliases,
	}, nil
}

// Write emits entries in the format Parse reads, header included.
func Write(w io.Writer, entries []datmant.ClassEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("colortable: write: %w", err)
	}
	for _, e := range entries {
		row := []string{e.Label, e.Color.HexString(), strconv.Itoa(int(e.Code)), strings.Join(e.Aliases, ";")}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("colortable: write: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), header[0])
}
