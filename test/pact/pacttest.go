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
	ProviderName = "roopet-api"
	ConsumerName = "roopet-web"

	StateSignedIn      = "user pact@example.com is signed in"
	StatePetExists     = "user pact@example.com is signed in and owns pet PACT42"
	StatePetMissing    = "user pact@example.com is signed in and no pet ZZZ999 exists"
	StateCatalogSeeded = "shop catalog is available"
	StateNoSession     = "no session exists"
)

const (
	UserEmail    = "pact@example.com"
	SessionToken = "pact-session-token"

	ExistingPetCode = "PACT42"
	MissingPetCode  = "ZZZ999"
	ExistingPetName = "Mochi"
	ExistingSpecies = "cat"
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

// PactFile returns the canonical pact file path for the web consumer.
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

// BearerHeader is the Authorization value carried by signed-in interactions.
func BearerHeader() string {
	return "Bearer " + SessionToken
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
