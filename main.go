package main

import (
	"github.com/segtools/gosegment/cmd"
)

func main() {
	cmd.Execute()
}
