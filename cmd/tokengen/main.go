// Package main provides a CLI tool for minting service tokens for the
// invocation API. Tokens are signed with whatever key is supplied; for local
// use this is the dev-mode key printed by the server at startup.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"conduit/internal/servicetoken"
	"conduit/pkg/domain"
)

type tokenOutput struct {
	Token     string `json:"token"`
	TenantID  string `json:"tenant_id"`
	ExpiresIn string `json:"expires_in"`
	Usage     string `json:"usage"`
}

func main() {
	signingKey := flag.String("signing-key", "", "Service token signing key (required)")
	tenantFlag := flag.String("tenant-id", "", "Tenant ID (UUID). Generated if empty.")
	ttl := flag.Duration("ttl", time.Hour, "Token time-to-live")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *signingKey == "" {
		fmt.Fprintln(os.Stderr, "error: -signing-key is required")
		os.Exit(2)
	}

	tenantID := domain.TenantID(uuid.New())
	if *tenantFlag != "" {
		parsed, err := domain.ParseTenantID(*tenantFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		tenantID = parsed
	}

	svc := servicetoken.NewService(*signingKey, "conduit", *ttl)
	signed, err := svc.Issue(tenantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out := tokenOutput{
			Token:     signed,
			TenantID:  tenantID.String(),
			ExpiresIn: ttl.String(),
			Usage:     "Authorization: Bearer <token>",
		}
		_ = json.NewEncoder(os.Stdout).Encode(out)
		return
	}

	fmt.Println(signed)
}
