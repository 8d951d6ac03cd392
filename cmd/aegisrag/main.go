package main

import (
	"github.com/SubikshaRamesh/AegisRAG/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
