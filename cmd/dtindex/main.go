// Command dtindex prints the digital transformation index report in a
// terminal and exports entity rows and charts to files.
package main

import (
	"os"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
