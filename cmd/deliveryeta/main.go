package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/zlocal/deliveryeta-service/internal/deliveryeta"
)

func main() {
	_ = godotenv.Load()

	s := deliveryeta.New()
	defer s.Logger.Sync()

	if err := s.Start(); err != nil {
		log.Fatal(err)
	}
}
