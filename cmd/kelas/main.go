package main

import (
	"log"

	"github.com/pelajarin/kelas/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ kelas failed to start: %v", err)
	}
}
