package main

import "github.com/OpenTraceLab/gdsrect/cmd/gdsrect/cmd"

func main() {
	cmd.Execute()
}
