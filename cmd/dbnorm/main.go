package main

import "github.com/ssyssy/ottertune/pkg/cli"

func main() {
	cli.Execute()
}
