package main

import "framemap/cmd"

func main() {
	cmd.Execute()
}
