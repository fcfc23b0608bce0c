package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mediabucket/mbx/internal/api"
	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/sessions"
	"github.com/mediabucket/mbx/internal/shared"
	"github.com/mediabucket/mbx/internal/ui"
)

// failWriter always returns an error on Write
type failWriter struct{}

func (f *failWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			client := api.NewClient("https://example.com/api", nil, 0, logger)
			manager := sessions.NewManager(nil)
			styles := ui.DefaultPalette()

			runner := NewRunner(RunnerOpts{
				Config:   config,
				Client:   client,
				Sessions: manager,
				Logger:   logger,
				Output:   output,
				Styles:   styles,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.client != client {
				t.Error("expected client to be set")
			}
			if runner.sessions != manager {
				t.Error("expected sessions to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.styles != styles {
				t.Error("expected styles to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil client builds one from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.client == nil {
				t.Error("expected default client to be built")
			}
		})

		t.Run("with nil pipeline builds one from client", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.pipeline == nil {
				t.Error("expected default pipeline to be built")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		commands := runner.register()

		if len(commands) == 0 {
			t.Fatal("expected commands to be registered")
		}

		names := map[string]bool{}
		for _, command := range commands {
			names[command.Name] = true
		}
		for _, want := range []string{"setup", "bucket", "auth", "search", "post", "tag", "upload", "stats", "playlist"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), `{"key":"value"}`) {
				t.Errorf("expected compact JSON, got %s", output.String())
			}
		})

		t.Run("returns error when writer fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &failWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
		})

		t.Run("returns error for unmarshalable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), true)

			if err == nil {
				t.Fatal("expected marshal error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("%d files\n", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "3 files\n" {
			t.Errorf("expected formatted output, got %q", output.String())
		}
	})

	t.Run("requireAuth", func(t *testing.T) {
		t.Run("returns stored session", func(t *testing.T) {
			manager := sessions.NewManager(nil)
			auth := models.Auth{
				BucketID:  7,
				Token:     "token",
				Base:      "https://example.com/api/buckets/7",
				Lifetime:  3600,
				CreatedAt: time.Now(),
			}
			if err := manager.Save(auth); err != nil {
				t.Fatalf("failed to save session: %v", err)
			}

			runner := NewRunner(RunnerOpts{Sessions: manager, Output: &bytes.Buffer{}})

			got, err := runner.requireAuth(7)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Token != "token" {
				t.Errorf("expected stored token, got %q", got.Token)
			}
		})

		t.Run("fails without a session", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Sessions: sessions.NewManager(nil), Output: &bytes.Buffer{}})

			_, err := runner.requireAuth(7)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("fails when the session expired", func(t *testing.T) {
			manager := sessions.NewManager(nil)
			auth := models.Auth{
				BucketID:  7,
				Token:     "token",
				Lifetime:  1,
				CreatedAt: time.Now().Add(-time.Hour),
			}
			if err := manager.Save(auth); err != nil {
				t.Fatalf("failed to save session: %v", err)
			}

			runner := NewRunner(RunnerOpts{Sessions: manager, Output: &bytes.Buffer{}})

			_, err := runner.requireAuth(7)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{"bytes", 512, "512 B/s"},
		{"kibibytes", 4 * 1024, "4.0 KiB/s"},
		{"mebibytes", 3 * 1024 * 1024, "3.0 MiB/s"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatRate(tc.rate); got != tc.want {
				t.Errorf("formatRate(%v) = %q, want %q", tc.rate, got, tc.want)
			}
		})
	}
}

func TestParsePostID(t *testing.T) {
	runCommand := func(t *testing.T, arg string) (int64, error) {
		t.Helper()
		var id int64
		var parseErr error
		command := postCommand(NewRunner(RunnerOpts{Output: &bytes.Buffer{}}))
		for _, sub := range command.Commands {
			if sub.Name == "show" {
				sub.Action = func(ctx context.Context, cmd *cli.Command) error {
					id, parseErr = parsePostID(cmd)
					return nil
				}
			}
		}
		args := []string{"mbx", "show", "--bucket", "1"}
		if arg != "" {
			args = append(args, arg)
		}
		root := &cli.Command{Name: "mbx", Commands: command.Commands}
		if err := root.Run(t.Context(), args); err != nil {
			t.Fatalf("failed to run command: %v", err)
		}
		return id, parseErr
	}

	t.Run("parses numeric id", func(t *testing.T) {
		id, err := runCommand(t, "42")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != 42 {
			t.Errorf("expected 42, got %d", id)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := runCommand(t, "")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		_, err := runCommand(t, "forty-two")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
