package main

import "github.com/stemaMSFT/tf-mcp-server-sub000/internal/cli"

func main() {
	cli.Execute()
}
