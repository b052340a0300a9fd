package main

import (
	"github.com/Laisky/file-extractor/cmd"
)

func main() {
	cmd.Execute()
}
