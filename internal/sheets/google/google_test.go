package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/export"
)

// fakeSheets serves the two Values endpoints the client uses.
type fakeSheets struct {
	mu       sync.Mutex
	values   [][]any
	appended [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.values})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]any `json:"values"`
		}
		if err := json.Unmarshal(body, &vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appended = append(f.appended, vr.Values...)
		f.values = append(f.values, vr.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRows": len(vr.Values)},
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	require.NoError(t, err)
	return New(svc, "sheet-id", "2024 Transactions")
}

func TestAppendRowsWritesHeaderToEmptySheet(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	n, err := c.AppendRows(context.Background(), [][]string{
		{"2024-03-01", "Food & Dining", "Lunch", "12.50", "cash"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, fake.appended, 2)
	assert.Equal(t, "Date", fake.appended[0][0])
	assert.Equal(t, "Lunch", fake.appended[1][2])
}

func TestAppendRowsSkipsExisting(t *testing.T) {
	fake := &fakeSheets{values: [][]any{
		{"Date", "Category", "Description", "Amount", "Payment Method"},
		{"2024-03-01", "Food & Dining", "Lunch", "12.5", "cash"},
	}}
	c := newTestClient(t, fake)
	rows := [][]string{
		{"2024-03-01", "Food & Dining", "Lunch", "12.50", "cash"},
		{"2024-03-02", "Transportation", "Train", "4.00", "credit_card"},
	}

	n, err := c.AppendRows(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, fake.appended, 1)
	assert.Equal(t, "Train", fake.appended[0][2])

	n, err = c.AppendRows(context.Background(), rows)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAppendRowsWithoutService(t *testing.T) {
	_, err := New(nil, "id", "sheet").AppendRows(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewFromEnvMissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	_, err := NewFromEnv(context.Background())
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")
}

func TestNewFromEnvMissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "abc")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestMissingRows(t *testing.T) {
	existing := [][]any{{"2024-03-01", "Food", "Lunch", 12.5, "cash"}}
	rows := [][]string{
		{"2024-03-01", "Food", "Lunch", "12.50", "cash"},
		{"2024-03-01", "Food", "Lunch", "12.51", "cash"},
		{"2024-03-01", "Food", "Lunch", "12.51", "cash"},
	}
	got := missingRows(existing, rows)
	assert.Equal(t, [][]string{rows[1]}, got)
	assert.Len(t, export.Header, 5)
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Transactions", "2024 Transactions"},
		{"2023 Transactions", "2023 Transactions"},
		{"  ", ""},
		{"123 Main", "2024 123 Main"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, yearPrefixedName(tt.base, 2024))
		})
	}
}

func TestParseAmountToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.50", 1250, true},
		{"12,5", 1250, true},
		{"1,234.56", 123456, true},
		{"-3", -300, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAmountToCents(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
