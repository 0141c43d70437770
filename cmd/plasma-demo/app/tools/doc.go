// Package tools holds the demo server's tools. Each file opens with the
// description clients see for its tool.
package tools
