package main

import "github.com/brogergvhs/pgrwall/cmd"

func main() {
	cmd.Execute()
}
