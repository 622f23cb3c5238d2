// Command checkoutstress is a manual concurrency stress driver for the
// checkout endpoint.
//
// Usage:
//
//	go run ./scripts/checkoutstress <book_id> <borrower1_id> [borrower2_id ...]
//
// It fires one POST /borrowingProcess per borrower simultaneously against the
// same book and tallies successes vs. "book is not available" rejections. With
// N borrowers racing a book holding Q copies, exactly min(N, Q) checkouts must
// succeed; anything else means the conditional-decrement guard is broken.
//
// The server must be running (SERVER_ADDR, default http://localhost:8080) with
// the book and borrowers already present.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"
)

const defaultServerAddr = "http://localhost:8080"

type checkoutResult struct {
	BorrowerID string
	StatusCode int
	Message    string
	Err        error
}

func main() {
	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	args := os.Args[1:]
	if len(args) < 2 {
		log.Fatal("Usage: go run ./scripts/checkoutstress <book_id> <borrower1_id> [borrower2_id ...]")
	}
	bookID := args[0]
	borrowerIDs := args[1:]

	fmt.Printf("=== Checkout Stress Test ===\n")
	fmt.Printf("Server    : %s\n", serverAddr)
	fmt.Printf("Book      : %s\n", bookID)
	fmt.Printf("Borrowers : %d\n\n", len(borrowerIDs))

	results := make([]checkoutResult, len(borrowerIDs))
	var wg sync.WaitGroup

	// Barrier so every request fires at once.
	start := make(chan struct{})

	for i, id := range borrowerIDs {
		wg.Add(1)
		go func(idx int, borrowerID string) {
			defer wg.Done()
			<-start
			results[idx] = attemptCheckout(serverAddr, bookID, borrowerID)
		}(i, id)
	}

	fmt.Println("Firing all requests simultaneously...")
	close(start)
	wg.Wait()

	var succeeded, rejected, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] borrower=%-10s err=%v\n", r.BorrowerID, r.Err)
		case r.StatusCode == http.StatusCreated:
			succeeded++
			fmt.Printf("  [OK  ] borrower=%-10s status=%d\n", r.BorrowerID, r.StatusCode)
		case r.StatusCode == http.StatusBadRequest:
			rejected++
			fmt.Printf("  [FULL] borrower=%-10s status=%d message=%q\n", r.BorrowerID, r.StatusCode, r.Message)
		default:
			failures++
			fmt.Printf("  [FAIL] borrower=%-10s status=%d message=%q\n", r.BorrowerID, r.StatusCode, r.Message)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Checkouts : %d\n", succeeded)
	fmt.Printf("Rejected  : %d\n", rejected)
	fmt.Printf("Failures  : %d\n", failures)
	fmt.Printf("Total     : %d\n\n", len(borrowerIDs))

	fmt.Println("--- Invariant Check ---")
	fmt.Println("Checkouts must equal min(number of borrowers, copies available before the run);")
	fmt.Println("the conditional decrement rejects every request past the last copy.")

	if failures > 0 {
		fmt.Printf("\n[WARNING] %d request(s) failed unexpectedly — check server logs.\n", failures)
		os.Exit(1)
	}
}

func attemptCheckout(serverAddr, bookID, borrowerID string) checkoutResult {
	url := serverAddr + "/borrowingProcess"
	body := fmt.Sprintf(`{"borrower_id":%s,"book_id":%s}`, borrowerID, bookID)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		return checkoutResult{BorrowerID: borrowerID, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return checkoutResult{BorrowerID: borrowerID, StatusCode: resp.StatusCode, Err: fmt.Errorf("bad JSON: %s", raw)}
	}
	msg, _ := parsed["message"].(string)

	return checkoutResult{
		BorrowerID: borrowerID,
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}
