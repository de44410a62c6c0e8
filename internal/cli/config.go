package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by the CLI
const (
	envServer    = "WATCHLIST_SERVER"
	envToken     = "WATCHLIST_TOKEN"
	envTokenFile = "WATCHLIST_TOKEN_FILE"
)

// Output formats
const (
	outputText = "text"
	outputJSON = "json"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config seeded from the environment
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault(envServer, "http://localhost:8080"),
		Token:     os.Getenv(envToken),
		TokenFile: getEnvOrDefault(envTokenFile, defaultTokenFile()),
		Output:    outputText,
	}
}

// Validate checks the flags that every command depends on
func (c *Config) Validate() error {
	var errs []error
	if c.Output != outputText && c.Output != outputJSON {
		errs = append(errs, fmt.Errorf("--output must be %q or %q, got %q", outputText, outputJSON, c.Output))
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("--server must be an http(s) URL, got %q", c.ServerURL))
	}
	return errors.Join(errs...)
}

// LoadToken reads the saved login token unless one was given by flag or environment
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Not logged in yet
			return nil
		}
		return fmt.Errorf("read token file: %w", err)
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken stores the login token, readable only by the current user
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, []byte(token+"\n"), 0o600)
}

// ClearToken forgets the saved token
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".watchlist", "token")
	}
	return filepath.Join(home, ".watchlist", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
