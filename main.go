package main

import "github.com/loganalyzer/rtlog/cmd"

func main() {
	cmd.Execute()
}
