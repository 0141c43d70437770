// Command plasma serves a project made of file components: markdown prompts
// and resources under app/. Applications with compiled components build their
// own binary around plasma.Main.
package main

import (
	"os"

	"plasma/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.Options{Use: "plasma"}, os.Args[1:]))
}
