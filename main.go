package main

import "github.com/termoshtt/cport/cmd"

func main() {
	cmd.Execute()
}
