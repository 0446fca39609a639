//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "shop-api"
	ConsumerName = "shop-web"

	StateCatalogue       = "demo catalogue is loaded"
	StateProductMissing  = "no product with id 404"
	StateReadyToCheckout = "alice has 100.00 and one desk lamp in her cart"
	StateShortOfFunds    = "bob has 10.00 and headphones in his cart"
)

const (
	DeskLampID       int64 = 1
	HeadphonesID     int64 = 4
	MissingProductID int64 = 404

	FundedUser = "alice"
	BrokeUser  = "bob"

	FundedDeposit = "100.00"
	BrokeDeposit  = "10.00"

	CheckoutKey = "pact-checkout-1"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web shop consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductPayload is the desk lamp as the demo catalogue defines it.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"id":        DeskLampID,
		"name":      "Desk Lamp",
		"price":     "30.00",
		"stock":     5,
		"available": true,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
