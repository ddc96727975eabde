package main

import (
	"github.com/mvp-joe/projected-source/internal/cli"
)

func main() {
	cli.Execute()
}
