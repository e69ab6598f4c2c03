// libctl is a small command-line client for a running libhub server.
// It keeps the session token in a local cache that mirrors what the web
// client stores, so "me" works across invocations until the token expires.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sudo-init-do/libhub/pkg/session"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "libhub server URL")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fatal("cannot locate home directory: %v", err)
	}
	store := session.New(session.NewFileStorage(filepath.Join(home, ".libhub", "session.json")))
	if err := store.Rehydrate(); err != nil {
		fatal("cannot load session: %v", err)
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch flag.Arg(0) {
	case "register":
		if flag.NArg() != 4 {
			fatal("usage: libctl register <username> <email> <password>")
		}
		login(client, *server, store, "/auth/register", map[string]string{
			"username": flag.Arg(1), "email": flag.Arg(2), "password": flag.Arg(3),
		})
	case "login":
		if flag.NArg() != 3 {
			fatal("usage: libctl login <username> <password>")
		}
		login(client, *server, store, "/auth/login", map[string]string{
			"username": flag.Arg(1), "password": flag.Arg(2),
		})
	case "me":
		me(client, *server, store)
	case "logout":
		if err := store.Logout(); err != nil {
			fatal("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		usage()
		os.Exit(2)
	}
}

func login(client *http.Client, server string, store *session.Store, path string, body map[string]string) {
	b, _ := json.Marshal(body)
	resp, err := client.Post(server+path, "application/json", bytes.NewReader(b))
	if err != nil {
		fatal("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		fatal("server returned %d: %s", resp.StatusCode, data)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		fatal("unexpected response: %s", data)
	}
	if err := store.LoginSucceeded(out.Token); err != nil {
		fatal("cannot store session: %v", err)
	}

	st := store.State()
	fmt.Printf("signed in as %s (roles %v), session valid until %s\n",
		st.Username, st.Roles, st.ExpiresAt.Format(time.RFC3339))
}

func me(client *http.Client, server string, store *session.Store) {
	st := store.State()
	if !st.Authenticated {
		fatal("not signed in")
	}

	req, _ := http.NewRequest(http.MethodGet, server+"/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+st.Token)
	resp, err := client.Do(req)
	if err != nil {
		fatal("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized {
		// Server rejected the token; the cache is stale.
		_ = store.Logout()
		fatal("session expired, please sign in again")
	}
	if resp.StatusCode >= 300 {
		fatal("server returned %d: %s", resp.StatusCode, data)
	}
	fmt.Println(string(data))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: libctl [-server URL] <register|login|me|logout> [args]")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
