package main

import (
	"fmt"
	"os"

	"github.com/irgordon/keyward/api/internal/config"
)

func main() {
	fmt.Println("🔍 keyward: Running Security Posture Audit...")

	cfg := config.Load()
	fmt.Printf("   Environment: %s\n", cfg.Environment)

	hasErrors := false
	for _, check := range cfg.Audit() {
		if check.Passed {
			fmt.Printf("✅ PASS: %s %s.\n", check.Name, check.Detail)
			continue
		}
		fmt.Printf("❌ FAIL: %s %s.\n", check.Name, check.Detail)
		hasErrors = true
	}

	if len(cfg.AllowedOrigins) == 0 {
		fmt.Println("⚠️  NOTICE: CORS_ALLOWED_ORIGINS is empty; browsers will be refused.")
	}

	fmt.Println("--------------------------------------------------")
	if hasErrors {
		fmt.Println("🚨 VERDICT: SECURITY POSTURE FAILED.")
		fmt.Println("Fix the errors above before attempting deployment.")
		os.Exit(1)
	}
	fmt.Println("🚀 VERDICT: SECURITY POSTURE VALIDATED. System is ready for launch.")
}
