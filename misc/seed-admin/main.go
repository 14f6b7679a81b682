// Command seed-admin prints the SQL for creating an admin account. Run it
// once against a fresh database:
//
//	go run ./misc/seed-admin "Store Owner" owner@example.com <password> | psql $DATABASE_URL
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 4 {
		log.Fatal("Usage: seed-admin <name> <email> <password>")
	}
	name, email, password := os.Args[1], os.Args[2], os.Args[3]

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Printf(
		"INSERT INTO users (id, name, email, role, password_hash) VALUES ('%s', '%s', '%s', 'admin', '%s');\n",
		uuid.NewString(), name, email, string(hash),
	)
}
