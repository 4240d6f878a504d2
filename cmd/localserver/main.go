package main

import (
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	scam_detector "gw-interactive.com/finya/scam-detector-cloudfunction"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	// populate env from .env file
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("env.Load: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", scam_detector.ClassifyMessage)

	log.Printf("Starting local scam-detector server on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("http.ListenAndServe: %v", err)
	}
}
