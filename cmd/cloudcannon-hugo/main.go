package main

import (
	"os"

	"github.com/bianoble/cloudcannon-hugo/cmd/cloudcannon-hugo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
