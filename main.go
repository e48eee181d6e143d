package main

import "github.com/stephencockerill/oink/cmd"

func main() {
	cmd.Execute()
}
