package main

import "github.com/sopworks/sopflow/cmd"

func main() {
	cmd.Execute()
}
