package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/technosupport/live-urlgen/internal/tokens"
)

func main() {
	operator := flag.String("operator", "", "Operator name or email placed in the token")
	ttl := flag.Duration("ttl", tokens.DefaultTTL, "Token lifetime")
	flag.Parse()

	key := os.Getenv("JWT_SIGNING_KEY")
	if key == "" {
		log.Fatal("JWT_SIGNING_KEY is not set")
	}
	if *operator == "" {
		log.Fatal("-operator is required")
	}

	token, err := tokens.NewManager(key).GenerateOperatorToken(*operator, *ttl)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
