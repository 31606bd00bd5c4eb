package main

import "github.com/clearbid/auctiond/internal/cli"

func main() {
	cli.Execute()
}
