package main

import "github.com/leafo/usdxmidi/cmd"

func main() {
	cmd.Execute()
}
