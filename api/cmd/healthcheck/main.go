package main

import (
	"net/http"
	"os"
	"time"

	"github.com/allisson/go-env"
)

func main() {
	// Points to the internal port of the API
	url := "http://localhost:" + env.GetString("PORT", "5000") + "/api/health"

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1) // Docker marks as UNHEALTHY
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	os.Exit(0) // Docker marks as HEALTHY
}
