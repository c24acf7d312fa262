package main

import "github.com/visarchlab/visextract/cmd/visextract/cmd"

func main() {
	cmd.Execute()
}
