// Command colonysim runs the Fevered World colony simulation.
package main

import "github.com/talgya/fevered-world/internal/cli"

func main() {
	cli.Execute()
}
