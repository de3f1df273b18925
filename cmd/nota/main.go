package main

import "github.com/nota-bridge/nota/internal/cli"

func main() {
	cli.Execute()
}
