// Command tokengen mints an access token for local testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/denizatac/gatehouse/token"
)

func main() {
	var (
		secret   = flag.String("secret", "your-256-bit-secret-key-min-32-bytes-here-for-demo!", "Signing secret (minimum 32 bytes)")
		id       = flag.Int64("id", 1, "User ID")
		email    = flag.String("email", "user@example.com", "Email address")
		username = flag.String("username", "user", "Username")
		admin    = flag.Bool("admin", false, "Set the admin flag")
		ttl      = flag.Duration("ttl", time.Hour, "Token validity")
	)

	flag.Parse()

	svc, err := token.NewService(token.Config{Secret: []byte(*secret), TTL: *ttl})
	if err != nil {
		log.Fatalf("Invalid token config: %v", err)
	}

	raw, err := svc.Issue(token.Claims{
		UserID:   *id,
		Email:    *email,
		Username: *username,
		IsAdmin:  *admin,
	})
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println("\n=== Access Token Generated ===")
	fmt.Printf("\nToken: %s\n\n", raw)
	fmt.Println("Claims:")
	fmt.Printf("  ID:       %d\n", *id)
	fmt.Printf("  Email:    %s\n", *email)
	fmt.Printf("  Username: %s\n", *username)
	fmt.Printf("  Admin:    %t\n", *admin)
	fmt.Printf("  Expires:  %s\n\n", time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/api/messages\n\n", raw)
}
