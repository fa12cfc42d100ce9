package main

import "github.com/egor/vicai/cmd"

func main() {
	cmd.Execute()
}
