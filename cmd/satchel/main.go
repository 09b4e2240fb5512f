// Package main provides the entry point for the satchel CLI.
package main

import (
	"os"
)

func main() {
	err := Execute()
	if err != nil {
		printError("%v", err)
	}
	os.Exit(exitCode(err))
}
