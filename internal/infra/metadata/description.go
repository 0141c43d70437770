package metadata

import (
	"bufio"
	"bytes"
	"strings"
)

// LeadingComment extracts the comment block at the top of a source unit.
// Preamble lines and namespace declarations are skipped; the contiguous
// comment lines that follow are returned without their markers.
func LeadingComment(content []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	stage := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch stage {
		case 0:
			if line == "" || isPreamble(line) {
				continue
			}
			stage = 1
			fallthrough
		case 1:
			if line == "" || isNamespace(line) {
				continue
			}
			stage = 2
			fallthrough
		case 2:
			if isDirective(line) {
				continue
			}
			text, ok := stripCommentMarker(line)
			if !ok {
				return joinComment(lines)
			}
			lines = append(lines, text)
		}
	}
	return joinComment(lines)
}

func isPreamble(line string) bool {
	return strings.Contains(line, "frozen_string_literal") ||
		strings.HasPrefix(line, "#!") ||
		isDirective(line)
}

func isDirective(line string) bool {
	return strings.HasPrefix(line, "//go:") ||
		strings.HasPrefix(line, "// +build") ||
		strings.HasPrefix(line, "//nolint")
}

func isNamespace(line string) bool {
	return strings.HasPrefix(line, "package ") || strings.HasPrefix(line, "module ")
}

func stripCommentMarker(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "//"):
		return strings.TrimSpace(strings.TrimPrefix(line, "//")), true
	case strings.HasPrefix(line, "#"):
		return strings.TrimSpace(strings.TrimLeft(line, "#")), true
	default:
		return "", false
	}
}

func joinComment(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
