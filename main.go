package main

import "github.com/rmcgee/healthdash/internal/cmd"

func main() {
	cmd.Execute()
}
