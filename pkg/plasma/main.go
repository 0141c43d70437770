package plasma

import (
	"os"
	"path/filepath"

	"plasma/internal/cli"
	"plasma/internal/infra/registry"
)

// Main runs the command line of an application built from registered
// components. It does not return.
func Main() {
	os.Exit(cli.Execute(cli.Options{
		Use:       filepath.Base(os.Args[0]),
		Registrar: registry.Default,
	}, os.Args[1:]))
}
