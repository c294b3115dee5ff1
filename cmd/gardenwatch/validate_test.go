package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCmd runs the root command with args and returns captured stdout
// and any error.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// flags keep their values between Execute calls
	_ = rootCmd.PersistentFlags().Set("env-file", "")

	// capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	// restore stdout
	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	return buf.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garden.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server_url: http://localhost:3000
port: 8080
poll_interval: 250ms
timeout: 0s
reset_policy: reachable
`)

	output, err := executeCmd(t, "validate", "-c", configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Server:            http://localhost:3000",
		"Port:              8080",
		"Poll interval:     250ms",
		"Request timeout:   none",
		"Failure threshold: 50",
		"Watcher ID:        true",
		"Reset policy:      reachable",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	configPath := writeConfig(t, `
port: 8080
`)

	_, err := executeCmd(t, "validate", "-c", configPath)
	if err == nil {
		t.Fatal("validate command expected error for invalid config, got nil")
	}

	if !strings.Contains(err.Error(), "server_url is required") {
		t.Errorf("error should mention 'server_url is required', got: %v", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "-c", "/nonexistent/path/garden.yaml")
	if err == nil {
		t.Fatal("validate command expected error for missing file, got nil")
	}

	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error should mention 'failed to read', got: %v", err)
	}
}

func TestRunValidate_EnvFile(t *testing.T) {
	const key = "GARDENWATCH_TEST_ENVFILE_URL"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte(key+"=http://garden.from.env:3000\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	configPath := writeConfig(t, "server_url: ${"+key+"}\n")

	output, err := executeCmd(t, "validate", "--env-file", envPath, "-c", configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	if !strings.Contains(output, "http://garden.from.env:3000") {
		t.Errorf("output should show the URL from the env file\nGot: %s", output)
	}
}

func TestRunValidate_MissingEnvFile(t *testing.T) {
	configPath := writeConfig(t, "server_url: http://localhost:3000\n")

	_, err := executeCmd(t, "validate", "--env-file", "/nonexistent/.env", "-c", configPath)
	if err == nil {
		t.Fatal("expected error for missing env file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to load env file") {
		t.Errorf("error should mention the env file, got: %v", err)
	}
}
