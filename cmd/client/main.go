package main

import "github.com/mcoot/bluetrace-go/internal/cli"

func main() {
	cli.Execute()
}
