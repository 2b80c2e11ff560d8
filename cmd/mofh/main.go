package main

import "github.com/Lebyy/mofh-go/cmd/mofh/cmd"

func main() {
	cmd.Execute()
}
