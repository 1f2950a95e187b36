package main

import "github.com/brogergvhs/webtoond/cmd"

func main() {
	cmd.Execute()
}
