// Package main renders an audit report from the invite and check stores.
//
// Usage:
//
//	report -since 24h                  # last day, written to ./reports
//	report -since 168h -output-dir out # last week
//	report -wallet 0x...               # include one wallet's full history
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"token-gate/internal/config"
	"token-gate/internal/orchestrator"
	"token-gate/internal/reporting"
)

func main() {
	envFile := flag.String("env-file", "", "Load variables from this file (default .env if present)")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	since := flag.Duration("since", 24*time.Hour, "Report window length ending now")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (default POSTGRES_DSN)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (default CLICKHOUSE_DSN)")
	wallet := flag.String("wallet", "", "Append the full check and invite history of this wallet")
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.ClickHouseDSN = *clickhouseDSN
	}
	cfg.UseMemory = false

	if cfg.PostgresDSN == "" || cfg.ClickHouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn and --clickhouse-dsn are required (or POSTGRES_DSN and CLICKHOUSE_DSN)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stores, err := orchestrator.OpenStores(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to databases: %v\n", err)
		os.Exit(1)
	}
	defer stores.Close()

	end := time.Now().UTC()
	start := end.Add(-*since)

	gen := reporting.NewGenerator(stores.Checks, stores.Invites)
	report, err := gen.Generate(ctx, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		stores.Close()
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if *wallet != "" {
		report.Wallet, err = gen.WalletHistory(ctx, *wallet)
		if err != nil {
			stores.Close()
			fmt.Fprintf(os.Stderr, "Error loading wallet history: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		stores.Close()
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	outputs := map[string]string{
		"AUDIT_REPORT.md": reporting.RenderMarkdown(report),
		"OUTCOMES.csv":    reporting.RenderCSV(report.Outcomes),
		"INVITES.csv":     reporting.RenderInvitesCSV(report.Invites),
	}
	for name, content := range outputs {
		if err := os.WriteFile(filepath.Join(*outputDir, name), []byte(content), 0o644); err != nil {
			stores.Close()
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	fmt.Println("Audit report generated successfully:")
	for _, name := range []string{"AUDIT_REPORT.md", "OUTCOMES.csv", "INVITES.csv"} {
		fmt.Printf("  - %s\n", filepath.Join(*outputDir, name))
	}
}
