package main

import "github.com/racelab/lapsmith/cmd"

func main() {
	cmd.Execute()
}
