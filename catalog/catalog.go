// SPDX-License-Identifier: EPL-2.0

// Package catalog reads the list of source audio files a sampling pipeline
// draws from.
//
// A catalog is a tab-separated text file, one entry per line:
//
//	<integer id>\t<path to audio file>
//
// There is no header. Blank lines are rejected. Ids need not be unique or
// contiguous.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxLineSize bounds a single catalog line.
const maxLineSize = 1 << 20

// Entry is one source file of the catalog.
type Entry struct {
	ID   int
	Path string
}

// Catalog is the ordered, read-only list of entries.
type Catalog []Entry

// MaxID returns the largest id, or -1 for an empty catalog.
func (c Catalog) MaxID() int {
	m := -1
	for _, e := range c {
		m = max(m, e.ID)
	}
	return m
}

// Parse reads catalog lines from r. Paths are returned as written.
func Parse(r io.Reader) (Catalog, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		out  Catalog
		line int
	)
	for sc.Scan() {
		line++
		e, err := parseLine(strings.TrimSuffix(sc.Text(), "\r"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return out, nil
}

func parseLine(text string) (Entry, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != 2 {
		return Entry{}, fmt.Errorf("%w: want 2 tab-separated fields, got %d: %q",
			ErrMalformedLine, len(fields), text)
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: id %q is not an integer: %q",
			ErrMalformedLine, fields[0], text)
	}
	if fields[1] == "" {
		return Entry{}, fmt.Errorf("%w: empty path: %q", ErrMalformedLine, text)
	}

	return Entry{ID: id, Path: fields[1]}, nil
}

// Load parses the catalog file at path. Relative entry paths are resolved
// against the directory holding the catalog.
func Load(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range c {
		if !filepath.IsAbs(c[i].Path) {
			c[i].Path = filepath.Join(dir, c[i].Path)
		}
	}
	return c, nil
}
