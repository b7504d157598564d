package main

import "github.com/example/meetplan/cmd"

func main() {
	cmd.Execute()
}
