package main

import "github.com/tjfontaine/polyglot-fetch/internal/cli"

func main() {
	cli.Execute()
}
