package main

import "github.com/Guna1610/resume-optimizer/cmd"

func main() {
	cmd.Execute()
}
