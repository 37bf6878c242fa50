package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/healthy-eats/storefront/internal/config"
	"github.com/healthy-eats/storefront/internal/pkg/auth"
)

// Usage: go run scripts/generate_secret.go
func main() {
	raw := make([]byte, 48)
	if _, err := rand.Read(raw); err != nil {
		log.Fatal("Error generating secret:", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret, VisitorExpiry: time.Minute}}
	jwtManager := auth.NewJWTManager(cfg)

	visitorID := auth.NewVisitorID()
	token, err := jwtManager.GenerateVisitorToken(visitorID)
	if err != nil {
		log.Fatal("Error signing test token:", err)
	}

	claims, err := jwtManager.ValidateVisitorToken(token)
	if err != nil || claims.VisitorID != visitorID {
		log.Fatal("Secret verification failed:", err)
	}

	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println("✅ Secret verified successfully!")
}
