package main

import "github.com/vibestream/vibestream/internal/cli"

func main() {
	cli.Execute()
}
