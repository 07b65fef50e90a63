package main

import "scsslint/internal/cli"

func main() {
	cli.Execute()
}
