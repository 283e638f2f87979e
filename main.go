package main

import "eftb/internal/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
