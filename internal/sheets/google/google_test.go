package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"tripcal/internal/core"

	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func testSnapshot() core.BudgetSnapshot {
	return core.BudgetSnapshot{
		ID:           7,
		TakenAt:      time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		Trigger:      "schedule",
		DocumentHash: "0123456789abcdef0123",
		Summary: core.BudgetSummary{
			Budget: 5000, Currency: "USD", Total: 1234.5, Remaining: 3765.5,
			PercentUsed: 24.69, ItemCount: 9,
		},
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), "  ", "")
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewSheetsService_MissingCredentials(t *testing.T) {
	clearCredentialEnv(t)
	_, err := newSheetsService(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE", "GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

const testOAuthClient = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

func TestOAuthHTTPClient(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		clearCredentialEnv(t)
		client, err := oauthHTTPClient(context.Background())
		if err != nil || client != nil {
			t.Fatalf("oauthHTTPClient() = %v, %v; want nil, nil", client, err)
		}
	})

	t.Run("invalid client json", func(t *testing.T) {
		clearCredentialEnv(t)
		t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", "invalid-json")
		t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"access_token":"test"}`)
		if _, err := oauthHTTPClient(context.Background()); err == nil || !strings.Contains(err.Error(), "oauth config") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		clearCredentialEnv(t)
		t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)
		_, err := oauthHTTPClient(context.Background())
		if err == nil || !strings.Contains(err.Error(), "missing oauth token") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("token from file", func(t *testing.T) {
		clearCredentialEnv(t)
		path := filepath.Join(t.TempDir(), "token.json")
		data, err := json.Marshal(oauth2.Token{AccessToken: "test", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)})
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)
		t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", path)
		client, err := oauthHTTPClient(context.Background())
		if err != nil {
			t.Fatalf("oauthHTTPClient() error = %v", err)
		}
		if client == nil {
			t.Fatal("expected an http client")
		}
	})
}

func TestSnapshotRow(t *testing.T) {
	want := []any{"2026-02-01T09:00:00Z", "schedule", "USD", 5000.0, 1234.5, 3765.5, 24.69, 9, "0123456789ab", int64(7)}
	if got := snapshotRow(testSnapshot()); !reflect.DeepEqual(got, want) {
		t.Errorf("snapshotRow() = %#v, want %#v", got, want)
	}
}

func TestAppendSnapshot_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.AppendSnapshot(context.Background(), testSnapshot()); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestAppendSnapshot(t *testing.T) {
	var gotPath string
	var gotBody gsheet.ValueRange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updates":{"updatedRange":"Budget!A5:J5","updatedRows":1}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx,
		goption.WithoutAuthentication(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	c := NewWithService(svc, "sheet-id", "Budget")
	ref, err := c.AppendSnapshot(ctx, testSnapshot())
	if err != nil {
		t.Fatalf("AppendSnapshot() error = %v", err)
	}
	if ref != "Budget!A5:J5" {
		t.Errorf("ref = %q", ref)
	}
	if !strings.Contains(gotPath, "sheet-id") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotBody.Values) != 1 || len(gotBody.Values[0]) != 10 {
		t.Errorf("body values = %v", gotBody.Values)
	}
}

func TestNewWithService_DefaultSheet(t *testing.T) {
	if c := NewWithService(nil, "id", ""); c.sheetName != defaultSheetName {
		t.Errorf("sheetName = %q", c.sheetName)
	}
}
