package main

import "github.com/mkrivosheev/taskgram/cmd"

func main() {
	cmd.Execute()
}
