package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"visa-onboarding.backend/pkg/crypto"
)

var (
	printfFn       = fmt.Printf
	generateHashFn = generateHash
	fatalfFn       = log.Fatalf
)

var errNoPassword = errors.New("usage: hash-gen <password>")

func resolvePassword(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errNoPassword
	}
	return args[0], nil
}

// generateHash produces the bcrypt hash stored in users.password_hash
func generateHash(password string) (string, error) {
	return crypto.HashPassword(password)
}

func main() {
	password, err := resolvePassword(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	hash, err := generateHashFn(password)
	if err != nil {
		fatalfFn("Failed to hash password: %v", err)
		return
	}

	printfFn("Bcrypt Hash: %s\n", hash)
}
