// Command pmboard runs the dashboard gateway and its terminal and desktop
// clients.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand(&RootOptions{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", displayText(err))
		os.Exit(1)
	}
}
