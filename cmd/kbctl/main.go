package main

import "github.com/ekrsw/knowledge2/internal/cli"

func main() {
	cli.Execute()
}
