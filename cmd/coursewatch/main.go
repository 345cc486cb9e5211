package main

import "github.com/yigit/coursewatch/internal/cli"

func main() {
	cli.Execute()
}
