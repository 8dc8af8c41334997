package main

import "github.com/fiootv/comms-gateway/cmd"

func main() {
	cmd.Execute()
}
