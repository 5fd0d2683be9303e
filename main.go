// Package main is the entry point for the avitrace CLI.
package main

import "avitrace.dev/pkg/avitrace/cmd"

func main() {
	cmd.Execute()
}
