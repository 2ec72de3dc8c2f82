package main

import "mongomark/cmd"

func main() {
	cmd.Execute()
}
