// Command plasma-demo is a sample application. Run it from this directory:
//
//	go run . serve
package main

import (
	"plasma/pkg/plasma"

	_ "plasma/cmd/plasma-demo/app/prompts"
	_ "plasma/cmd/plasma-demo/app/resources"
	_ "plasma/cmd/plasma-demo/app/tools"
)

func main() {
	plasma.Main()
}
