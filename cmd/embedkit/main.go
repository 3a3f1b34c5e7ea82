package main

import "embedkit/internal/cli"

func main() {
	cli.Execute()
}
