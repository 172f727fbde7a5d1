package main

import "github.com/nutrilog/core/cmd"

func main() {
	cmd.Execute()
}
