package main

import "github.com/Tiliavir/trivial-time-report/cmd"

func main() {
	cmd.Execute()
}
