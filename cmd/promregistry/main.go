package main

import (
	"log"

	"github.com/promreg/promregistry/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ promregistry failed to start: %v", err)
	}
}
