// Command drawcheck compares master and check mechanical drawings and
// prints a structured difference report.
package main

import (
	"github.com/MeKo-Tech/drawcheck/cmd/drawcheck/cmd"
)

func main() {
	cmd.Execute()
}
