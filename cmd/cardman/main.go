package main

import "github.com/amterp/cardman/internal/cli"

func main() {
	cli.Run()
}
