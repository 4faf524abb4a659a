package main

import "github.com/mintebank/minte/internal/cli"

func main() {
	cli.Execute()
}
