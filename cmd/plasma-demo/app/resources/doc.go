// Package resources holds the demo server's compiled resources.
package resources
