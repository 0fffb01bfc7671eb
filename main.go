package main

import "github.com/openverse-dev/weekly-digest/cmd"

func main() {
	cmd.Execute()
}
