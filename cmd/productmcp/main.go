package main

import (
	"log"
	"os"

	"product-catalog-mcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("ERROR: %v", err)
		os.Exit(1)
	}
}
