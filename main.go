package main

import "factcheck/cmd"

func main() {
	cmd.Execute()
}
