package main

import "github.com/scalog/wordsender/cmd"

func main() {
	cmd.Execute()
}
