package main

import "github.com/booknest/booknest/cli"

func main() {
	cli.Execute()
}
