package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/models"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func stubProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func TestGetTrayAppConfigDir(t *testing.T) {
	base := stubConfigDir(t)
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)

	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != trayDir {
		t.Errorf("expected %s, got %s", trayDir, dir)
	}

	if err := os.MkdirAll(trayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	settings := filepath.Join(trayDir, "settings.json")

	customDir := "/custom/habitkeep/dir"
	if err := os.WriteFile(settings, []byte(fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, customDir)), 0o644); err != nil {
		t.Fatal(err)
	}
	if dir, _ := GetTrayAppConfigDir(); dir != customDir {
		t.Errorf("expected %s, got %s", customDir, dir)
	}

	if err := os.WriteFile(settings, []byte(`not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if dir, _ := GetTrayAppConfigDir(); dir != trayDir {
		t.Errorf("expected fallback to %s for unreadable settings, got %s", trayDir, dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	tests := []struct {
		name       string
		lockfile   string
		executable string
		wantErr    string
	}{
		{"two-part lockfile", "8080|12345", "habitkeep-tray", "malformed"},
		{"garbage", "invalid", "habitkeep-tray", "malformed"},
		{"empty secret", "8080|12345|", "habitkeep-tray", "secret"},
		{"empty port", "|12345|s3cret", "habitkeep-tray", "port"},
		{"port out of range", "99999|12345|s3cret", "habitkeep-tray", "range"},
		{"bad pid", "8080|abc|s3cret", "habitkeep-tray", "process ID"},
		{"process gone", "8080|12345|s3cret", "", "not running"},
		{"wrong executable", "8080|12345|s3cret", "other-app", "is not"},
		{"valid", "8080|12345|s3cret\n", "habitkeep-tray", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubProcess(t, tt.executable)
			path := filepath.Join(t.TempDir(), constants.NotifierLockfileName)
			if err := os.WriteFile(path, []byte(tt.lockfile), 0o644); err != nil {
				t.Fatal(err)
			}

			port, secret, err := findAndValidateTrayProcess(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if port != "8080" || secret != "s3cret" {
				t.Errorf("got port %q secret %q", port, secret)
			}
		})
	}

	t.Run("missing lockfile", func(t *testing.T) {
		_, _, err := findAndValidateTrayProcess(filepath.Join(t.TempDir(), "nope.lock"))
		if err != ErrTrayNotRunning {
			t.Errorf("expected ErrTrayNotRunning, got %v", err)
		}
	})
}

func TestTraySenderSend(t *testing.T) {
	var got WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("X-Habitkeep-Secret") != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	base := stubConfigDir(t)
	stubProcess(t, "habitkeep-tray")
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeLock := func(secret string) {
		content := fmt.Sprintf("%s|4242|%s", u.Port(), secret)
		if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sender := NewTraySender()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		writeLock("test-secret")
		n := &models.Notification{Title: constants.EveningTitle, Body: "Completed today:\nRead"}
		if err := sender.Send(ctx, n); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Title != constants.EveningTitle || got.Text != n.Body {
			t.Errorf("unexpected payload %+v", got)
		}
		if got.DurationMs != constants.NotificationDurationMs {
			t.Errorf("expected duration %d, got %d", constants.NotificationDurationMs, got.DurationMs)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		writeLock("wrong-secret")
		err := sender.Send(ctx, &models.Notification{Title: "t", Body: "hello"})
		if err == nil || !strings.Contains(err.Error(), "401") {
			t.Errorf("expected 401 error, got %v", err)
		}
	})

	t.Run("server failure", func(t *testing.T) {
		writeLock("test-secret")
		if err := sender.Send(ctx, &models.Notification{Title: "t", Body: "fail"}); err == nil {
			t.Error("expected error for server failure")
		}
	})

	t.Run("nil notification", func(t *testing.T) {
		if err := sender.Send(ctx, nil); err != nil {
			t.Errorf("expected nil notification to be a no-op, got %v", err)
		}
	})
}

func TestStdoutSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdoutSender(&buf)

	if err := s.Send(context.Background(), nil); err != nil || buf.Len() != 0 {
		t.Fatalf("expected nothing written for nil, got %q (%v)", buf.String(), err)
	}

	n := &models.Notification{Title: constants.MorningTitle, Body: "You have not completed the following habits:\nRead in 4 days."}
	if err := s.Send(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := constants.MorningTitle + "\n" + n.Body + "\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{constants.SenderTray, false},
		{constants.SenderStdout, false},
		{"", false},
		{"pager", true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			_, err := New(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
		})
	}
}
