package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoginCommand_NoOAuthClient(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Dir: dir}

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LoginCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	if !strings.HasPrefix(errBuf.String(), "error: oauth_client.json not found in "+dir) {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "Then run 'todo login' again.") {
		t.Error("expected setup instructions")
	}
}

// A stored token that cannot be refreshed must not short-circuit login.
func TestLoginCommand_StaleToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"corrupt", `{not json`},
		{"no refresh token", `{"access_token":"expired","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, config.OAuthClientFile, testOAuthClient)
			writeFile(t, dir, config.TokenFile, tt.token)
			cfg := &config.Config{Dir: dir}

			// Cancelled up front so the callback wait returns at once
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var outBuf, errBuf bytes.Buffer
			code := (&commands.LoginCmd{}).Run(ctx, cfg, nil, nil, &outBuf, &errBuf)

			if outBuf.String() == "already logged in\n" {
				t.Error("should not report an existing login")
			}
			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
		})
	}
}

func TestLogoutCommand_RemovesOnlyToken(t *testing.T) {
	dir := t.TempDir()
	oauthPath := writeFile(t, dir, config.OAuthClientFile, testOAuthClient)
	tokenPath := writeFile(t, dir, config.TokenFile, `{"access_token":"test","refresh_token":"test"}`)
	cfg := &config.Config{Dir: dir}

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if errBuf.String() != "" {
		t.Errorf("expected no stderr, got %q", errBuf.String())
	}
	if outBuf.String() != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", outBuf.String())
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token file should have been deleted")
	}
	if _, err := os.Stat(oauthPath); err != nil {
		t.Error("oauth client file should be kept")
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	tests := []struct {
		name     string
		quiet    bool
		expected string
	}{
		{"normal", false, "not logged in\n"},
		{"quiet", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Dir: t.TempDir(), Quiet: tt.quiet}

			var outBuf, errBuf bytes.Buffer
			code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

			if code != exitcode.Success {
				t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
			}
			if errBuf.String() != "" {
				t.Errorf("expected no stderr, got %q", errBuf.String())
			}
			if outBuf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, outBuf.String())
			}
		})
	}
}
