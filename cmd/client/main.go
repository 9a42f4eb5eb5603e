package main

import "tasksync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
