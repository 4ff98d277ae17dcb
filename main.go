package main

import "github.com/notargets/goforest/cmd"

func main() {
	cmd.Execute()
}
