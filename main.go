package main

import "bite/internal/cli"

func main() {
	cli.Execute()
}
