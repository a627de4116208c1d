package main

import "github.com/scandocs/scandoc/cmd/scandoc/cmd"

func main() {
	cmd.Execute()
}
