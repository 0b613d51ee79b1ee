package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("printJSON failed: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestRefundCommandSendsScopedRequest(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/members/m-1/refunds" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Tenant-ID") != "coop-a" || r.Header.Get("X-Actor-ID") != "admin-1" {
			t.Errorf("missing scope headers: %v", r.Header)
		}
		if r.Header.Get("Idempotency-Key") != "rf-key" {
			t.Errorf("expected idempotency key to be forwarded")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"refund":{"id":"rf-1"}}`))
	}))
	defer server.Close()

	out, err := execute(t, "--url", server.URL, "--tenant", "coop-a", "--actor", "admin-1",
		"refund", "--member", "m-1", "--source", "wallet", "--amount", "250.00", "--reason", "exit",
		"--idempotency-key", "rf-key")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	if got["amount"] != "250.00" || got["source"] != "wallet" {
		t.Fatalf("unexpected payload %v", got)
	}
	if !strings.Contains(out, `"id": "rf-1"`) {
		t.Fatalf("expected refund in output, got %s", out)
	}
}

func TestRefundCommandRequiresActor(t *testing.T) {
	_, err := execute(t, "--tenant", "coop-a",
		"refund", "--member", "m-1", "--source", "wallet", "--amount", "1", "--reason", "exit")
	if err == nil || !strings.Contains(err.Error(), "--actor") {
		t.Fatalf("expected actor error, got %v", err)
	}
}

func TestAvailabilityCommandReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/members/m-9/availability/wallet" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"member not found","code":"not_found"}`))
	}))
	defer server.Close()

	_, err := execute(t, "--url", server.URL, "--tenant", "coop-a", "availability", "m-9", "--source", "wallet")
	if err == nil || !strings.Contains(err.Error(), "not_found") {
		t.Fatalf("expected not_found error, got %v", err)
	}
}

func TestReconcileCommandPicksEndpoint(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"is_reconciled":true}`))
	}))
	defer server.Close()

	if _, err := execute(t, "--url", server.URL, "--tenant", "coop-a", "reconcile"); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if _, err := execute(t, "--url", server.URL, "--tenant", "coop-a", "reconcile", "--account", "acc-1"); err != nil {
		t.Fatalf("account reconcile failed: %v", err)
	}

	if len(paths) != 2 || paths[0] != "/api/v1/reconciliation/report" || paths[1] != "/api/v1/accounts/acc-1/reconcile" {
		t.Fatalf("unexpected paths %v", paths)
	}
}

func TestImportCommandUploadsMultipart(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "contributions.csv")
	if err := os.WriteFile(file, []byte("Member ID,Amount\nM-0001,5000\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/imports/contribution" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file field: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if header.Filename != "contributions.csv" || !strings.Contains(string(data), "M-0001") {
			t.Errorf("unexpected upload %s %q", header.Filename, data)
		}
		_, _ = w.Write([]byte(`{"total":1,"successful":1,"errors":[]}`))
	}))
	defer server.Close()

	out, err := execute(t, "--url", server.URL, "--tenant", "coop-a", "--actor", "admin-1", "import", "contribution", file)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, `"successful": 1`) {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	if _, err := execute(t, "migrate", "sideways", "--database-url", "postgres://x"); err == nil {
		t.Fatal("expected an error for an unknown direction")
	}
}
