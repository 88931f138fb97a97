package main

import "github.com/agentic-research/bidsgraph/cmd"

func main() {
	cmd.Execute()
}
