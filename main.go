package main

import "github.com/tempoxyz/tempo-go/cmd"

func main() {
	cmd.Execute()
}
