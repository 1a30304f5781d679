// Package main runs a single eligibility check from the command line.
//
// Usage:
//
//	check -address 0x...          # check and invite
//	check -address 0x... -json    # print the outcome as JSON
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"token-gate/internal/config"
	"token-gate/internal/domain"
	"token-gate/internal/orchestrator"
)

func main() {
	logger := log.New(os.Stderr, "[check] ", log.LstdFlags)

	envFile := flag.String("env-file", "", "Load variables from this file (default .env if present)")
	address := flag.String("address", "", "Wallet address to check (required)")
	asJSON := flag.Bool("json", false, "Print the outcome as JSON")
	verbose := flag.Bool("verbose", false, "Log pipeline steps to stderr")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")
	flag.Parse()

	if *address == "" {
		logger.Fatal("-address is required")
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config:\n%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pipelineLog := log.New(io.Discard, "", 0)
	if *verbose {
		pipelineLog = log.New(os.Stderr, "", log.LstdFlags)
	}

	components, err := orchestrator.Build(ctx, cfg, orchestrator.Options{
		SkipAudit: true,
		Logger:    pipelineLog,
	})
	if err != nil {
		logger.Fatalf("Failed to build components: %v", err)
	}
	defer components.Close()

	out := components.Checker.Check(ctx, *address)

	if *asJSON {
		printJSON(out)
	} else {
		fmt.Printf("%s: %s\n", out.Code, out.Message)
	}

	if out.Code != domain.OutcomeInviteSent {
		components.Close()
		os.Exit(exitCode(out.Code))
	}
}

func printJSON(out domain.Outcome) {
	body := map[string]interface{}{
		"outcome":   out.Code.String(),
		"message":   out.Message,
		"retryable": out.Code.Retryable(),
	}
	if out.Balance != nil {
		body["balance"] = out.Balance.String()
	}
	if out.Receipt != nil {
		body["fid"] = out.Receipt.InviteeFID
		body["channel"] = out.Receipt.ChannelID
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(body)
}

// exitCode: 1 for retryable failures, 2 for invalid input, 3 for other refusals.
func exitCode(code domain.OutcomeCode) int {
	switch {
	case code.Retryable():
		return 1
	case code == domain.OutcomeInvalidInput:
		return 2
	default:
		return 3
	}
}
