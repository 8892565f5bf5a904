package main

import (
	"fmt"
	"os"

	"job-tracker-backend/pkg/security"
)

// Prints bcrypt hashes for seeding users by hand:
//
//	go run ./scripts alice-password bob-password
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>...")
		os.Exit(2)
	}

	for _, pass := range os.Args[1:] {
		hash, err := security.HashPassword(pass)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		fmt.Println(hash)
	}
}
