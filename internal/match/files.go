// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadTermsColumn reads subject terms from the first column of a
// tab-separated file, optionally skipping a header row. Blank lines
// are ignored.
func ReadTermsColumn(path string, skipHeader bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening terms file: %w", err)
	}
	defer f.Close()

	var terms []string
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if skipHeader {
				continue
			}
		}
		term := strings.TrimSpace(strings.SplitN(line, "\t", 2)[0])
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return terms, nil
}

// ReadTermList reads a reference vocabulary with one term per line.
// Blank lines are ignored.
func ReadTermList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening term list: %w", err)
	}
	defer f.Close()

	var terms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return terms, nil
}
