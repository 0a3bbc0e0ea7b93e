//go:build ignore
// +build ignore

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"bitrix-lead-relay/internal/utils"
)

// Sends a signed sample call-center event to a running relay.
//
// Usage: go run scripts/send_test_webhook.go [url]
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️  No .env file found, using environment variables")
	}

	relayURL := "http://localhost:8080/webhook"
	if len(os.Args) > 1 {
		relayURL = os.Args[1]
	}

	fmt.Println("📞 Sending sample call-center webhook...\n")

	event := map[string]interface{}{
		"contact": map[string]interface{}{
			"name":    "Test Contact",
			"phone":   "8 (900) 555-01-02",
			"email":   "test@example.com",
			"city":    "Moscow",
			"comment": "created by send_test_webhook.go",
		},
		"call": map[string]interface{}{
			"scenario_name": "Smoke test",
			"started_at":    time.Now().UTC().Format(time.RFC3339),
			"duration":      65,
			"tags":          []string{"test"},
			"result": map[string]interface{}{
				"result_name": "Connected",
				"comment":     "relay smoke test",
			},
			"operator":   map[string]interface{}{"name": "CLI"},
			"agreements": map[string]interface{}{"client_name": "Test Contact"},
		},
	}

	body, err := json.Marshal(event)
	if err != nil {
		fmt.Printf("❌ Failed to encode event: %v\n", err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, relayURL, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("❌ Failed to build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" {
		fmt.Println("⚠️  WEBHOOK_SECRET not set, sending unsigned")
	} else {
		req.Header.Set("X-Webhook-Signature", utils.SignBody(secret, body))
		fmt.Println("🔏 Request signed with WEBHOOK_SECRET")
	}

	client := &http.Client{Timeout: 35 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("❌ Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("   Status: %s\n", resp.Status)
	fmt.Printf("   Body:   %s\n", string(respBody))

	if resp.StatusCode == http.StatusOK {
		fmt.Println("\n✅ Lead relayed successfully!")
	} else {
		fmt.Println("\n❌ Relay rejected the webhook")
		os.Exit(1)
	}
}
