// Package prompts holds the demo server's compiled prompts.
package prompts
