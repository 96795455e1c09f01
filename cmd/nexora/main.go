package main

import (
	"log"

	"github.com/nexora-community/nexora-bot/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ nexora failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ nexora failed: %v", err)
	}
}
