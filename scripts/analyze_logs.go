package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors       int
	CheckoutsStarted  int
	CheckoutRollbacks int
	QRGenerated       int
	SessionsCreated   int
	WebhooksProcessed int
	DecryptFailures   int
	SignatureFailures int
	PaymentsSettled   int
	MethodUsage       map[string]int
	ErrorPatterns     map[string]int
}

func main() {
	// Get today's date for log file names
	today := time.Now().Format("2006-01-02")
	logDir := "./logs"

	stats := &LogStats{
		MethodUsage:   make(map[string]int),
		ErrorPatterns: make(map[string]int),
	}

	analyzeErrorLogs(filepath.Join(logDir, fmt.Sprintf("error-%s.log", today)), stats)
	analyzeInfoLogs(filepath.Join(logDir, fmt.Sprintf("info-%s.log", today)), stats)

	printReport(stats)
}

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		if strings.Contains(line, "Payment initialization failed") {
			stats.CheckoutRollbacks++
		}
		if strings.Contains(line, "callback decrypt failed") {
			stats.DecryptFailures++
		}
		if strings.Contains(line, "webhook signature mismatch") {
			stats.SignatureFailures++
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "Processing checkout with method") {
			stats.CheckoutsStarted++
			extractMethodUsage(line, stats)
		}
		if strings.Contains(line, "QR generated for order") {
			stats.QRGenerated++
		}
		if strings.Contains(line, "session created for order") {
			stats.SessionsCreated++
		}
		if strings.Contains(line, "Webhook processed") || strings.Contains(line, "callback for reference") {
			stats.WebhooksProcessed++
		}
		if strings.Contains(line, "payment_status=success") || strings.Contains(line, "status=success") {
			stats.PaymentsSettled++
		}
	}
}

func extractMethodUsage(line string, stats *LogStats) {
	methodRegex := regexp.MustCompile(`method (cod|cashfree|sprintnxt)`)
	if match := methodRegex.FindStringSubmatch(line); len(match) == 2 {
		stats.MethodUsage[match[1]]++
	}
}

func extractErrorPattern(line string, stats *LogStats) {
	// Extract the main error message
	parts := strings.Split(line, ":")
	if len(parts) > 1 {
		errorMsg := strings.TrimSpace(parts[1])
		stats.ErrorPatterns[errorMsg]++
	}
}

func printReport(stats *LogStats) {
	fmt.Println("\n=== Payment Log Analysis Report ===")
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Checkout Statistics:")
	fmt.Printf("   Checkouts Started: %d\n", stats.CheckoutsStarted)
	fmt.Printf("   Rolled Back After Provider Failure: %d\n", stats.CheckoutRollbacks)

	fmt.Println("\n2. Gateway Activity:")
	fmt.Printf("   UPI QRs Generated: %d\n", stats.QRGenerated)
	fmt.Printf("   Hosted Sessions Created: %d\n", stats.SessionsCreated)
	fmt.Printf("   Webhooks Processed: %d\n", stats.WebhooksProcessed)
	fmt.Printf("   Payments Settled: %d\n", stats.PaymentsSettled)

	fmt.Println("\n3. Security Incidents:")
	fmt.Printf("   Webhook Decrypt Failures: %d\n", stats.DecryptFailures)
	fmt.Printf("   Webhook Signature Mismatches: %d\n", stats.SignatureFailures)

	fmt.Println("\n4. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n5. Payment Method Usage:")
	printTopCounts(stats.MethodUsage, 5)

	fmt.Println("\n6. Most Common Errors:")
	printTopCounts(stats.ErrorPatterns, 5)
}

func printTopCounts(counts map[string]int, limit int) {
	type entry struct {
		key   string
		count int
	}

	var entries []entry
	for key, count := range counts {
		entries = append(entries, entry{key, count})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d occurrences\n", e.key, e.count)
	}
}
