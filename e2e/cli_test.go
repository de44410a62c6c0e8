package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/watchlist/internal/factory"
	"github.com/mcoot/watchlist/internal/services/auth"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "watchlist-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/watchlist")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) command(args ...string) *exec.Cmd {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	// Keep the developer's own token out of the run
	cmd.Env = append(os.Environ(), "WATCHLIST_TOKEN=")
	return cmd
}

func (r *cliRunner) run(args ...string) (string, error) {
	output, err := r.command(args...).CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithStdin(stdin string, args ...string) (string, error) {
	cmd := r.command(args...)
	cmd.Stdin = strings.NewReader(stdin)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte("e2e-secret")
	app, err := factory.New(factory.Config{AuthConfig: authCfg})
	require.NoError(t, err)

	server := &http.Server{
		Addr:              addr,
		Handler:           app.Router(false),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type userResponse struct {
	Message string `json:"message"`
	User    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type movie struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Language string `json:"language"`
	Overview string `json:"overview"`
	Watched  bool   `json:"watched"`
}

type movieResponse struct {
	Message string `json:"message"`
	Movie   movie  `json:"movie"`
}

type moviesResponse struct {
	Movies []movie `json:"movies"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "ok", decode[healthResponse](t, output).Status)
}

func TestCLI_AuthCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("auth", "register", "--user", "alice", "--pass", "s3cret")
	require.NoError(t, err, "output: %s", output)
	registered := decode[userResponse](t, output)
	assert.Equal(t, "alice", registered.User.Username)
	assert.NotEmpty(t, registered.User.ID)

	// Registering again fails
	output, err = cli.run("auth", "register", "--user", "alice", "--pass", "other")
	require.Error(t, err)
	assert.Contains(t, output, "username already taken")

	// Wrong password
	output, err = cli.run("auth", "login", "--user", "alice", "--pass", "wrong")
	require.Error(t, err)
	assert.Contains(t, output, "invalid username or password")

	// Login saves the token
	output, err = cli.run("auth", "login", "--user", "alice", "--pass", "s3cret")
	require.NoError(t, err, "output: %s", output)
	login := decode[loginResponse](t, output)
	assert.NotEmpty(t, login.Token)

	saved, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, login.Token, strings.TrimSpace(string(saved)))

	// Me uses the saved token
	output, err = cli.run("auth", "me")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, registered.User.ID, decode[userResponse](t, output).User.ID)

	// Logout forgets it
	output, err = cli.run("auth", "logout")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Logged out.", decode[messageResponse](t, output).Message)

	_, err = os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(err))

	output, err = cli.run("auth", "me")
	require.Error(t, err)
	assert.Contains(t, output, "missing token")

	// The token itself is still valid until it expires
	output, err = cli.runWithToken(login.Token, "auth", "me")
	require.NoError(t, err, "output: %s", output)
}

func TestCLI_PasswordFromStdin(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.runWithStdin("piped-pass\n", "auth", "register", "--user", "bob")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.runWithStdin("piped-pass\n", "auth", "login", "--user", "bob")
	require.NoError(t, err, "output: %s", output)
	assert.NotEmpty(t, decode[loginResponse](t, output).Token)
}

func TestCLI_MovieCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	_, err := cli.run("auth", "register", "--user", "alice", "--pass", "s3cret")
	require.NoError(t, err)
	_, err = cli.run("auth", "login", "--user", "alice", "--pass", "s3cret")
	require.NoError(t, err)

	// Add
	output, err := cli.run("movies", "add", "--title", "Dune", "--language", "English")
	require.NoError(t, err, "output: %s", output)
	added := decode[movieResponse](t, output)
	assert.Equal(t, "Movie added to watchlist.", added.Message)
	assert.Equal(t, "Dune", added.Movie.Title)
	assert.False(t, added.Movie.Watched)
	duneID := added.Movie.ID

	output, err = cli.run("movies", "add", "--title", "Heat")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Unknown", decode[movieResponse](t, output).Movie.Language)

	// List unwatched
	output, err = cli.run("movies", "list", "--status", "unwatched")
	require.NoError(t, err, "output: %s", output)
	assert.Len(t, decode[moviesResponse](t, output).Movies, 2)

	// Mark Dune watched
	output, err = cli.run("movies", "update", duneID, "--watched")
	require.NoError(t, err, "output: %s", output)
	updated := decode[movieResponse](t, output)
	assert.True(t, updated.Movie.Watched)
	assert.Equal(t, "English", updated.Movie.Language)

	output, err = cli.run("movies", "list", "--status", "watched")
	require.NoError(t, err, "output: %s", output)
	watched := decode[moviesResponse](t, output).Movies
	require.Len(t, watched, 1)
	assert.Equal(t, duneID, watched[0].ID)

	// Get
	output, err = cli.run("movies", "get", duneID)
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, updated.Movie, decode[movieResponse](t, output).Movie)

	// Bad filter
	output, err = cli.run("movies", "list", "--status", "bogus")
	require.Error(t, err)
	assert.Contains(t, output, "invalid status")

	// Update with nothing to change is rejected locally
	_, err = cli.run("movies", "update", duneID)
	require.Error(t, err)

	// Delete
	output, err = cli.run("movies", "delete", duneID)
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Movie removed.", decode[movieResponse](t, output).Message)

	output, err = cli.run("movies", "get", duneID)
	require.Error(t, err)
	assert.Contains(t, output, "movie not found")
}

func TestCLI_Isolation(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	alice := newCLIRunner(t, ts.addr)
	bob := newCLIRunner(t, ts.addr)

	for _, c := range []struct {
		runner *cliRunner
		name   string
	}{{alice, "alice"}, {bob, "bob"}} {
		_, err := c.runner.run("auth", "register", "--user", c.name, "--pass", "s3cret")
		require.NoError(t, err)
		_, err = c.runner.run("auth", "login", "--user", c.name, "--pass", "s3cret")
		require.NoError(t, err)
	}

	output, err := alice.run("movies", "add", "--title", "Dune")
	require.NoError(t, err, "output: %s", output)
	duneID := decode[movieResponse](t, output).Movie.ID

	output, err = bob.run("movies", "list")
	require.NoError(t, err, "output: %s", output)
	assert.Empty(t, decode[moviesResponse](t, output).Movies)

	output, err = bob.run("movies", "delete", duneID)
	require.Error(t, err)
	assert.Contains(t, output, "movie not found")

	output, err = alice.run("movies", "get", duneID)
	require.NoError(t, err, "output: %s", output)
}

func TestCLI_DeleteAccount(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	_, err := cli.run("auth", "register", "--user", "alice", "--pass", "s3cret")
	require.NoError(t, err)
	output, err := cli.run("auth", "login", "--user", "alice", "--pass", "s3cret")
	require.NoError(t, err)
	token := decode[loginResponse](t, output).Token

	// Requires confirmation
	output, err = cli.run("auth", "delete")
	require.Error(t, err)
	assert.Contains(t, output, "--yes")

	output, err = cli.run("auth", "delete", "--yes")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Account deleted.", decode[userResponse](t, output).Message)

	// The old token no longer works
	output, err = cli.runWithToken(token, "movies", "list")
	require.Error(t, err)
	assert.Contains(t, output, "user no longer exists")

	// The username is free again
	_, err = cli.run("auth", "register", "--user", "alice", "--pass", "new-pass")
	require.NoError(t, err)
}
