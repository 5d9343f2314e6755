package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// editorClient describes an MCP client esmshift can register itself with.
// Clients either ship a CLI with an `mcp add` subcommand or read a JSON file
// holding a map of servers.
type editorClient struct {
	ID       string
	Name     string
	Binary   string        // CLI clients
	Markers  []string      // project directories that indicate presence
	Config   func() string // file clients
	Key      string        // servers map key inside the config file
	Extra    map[string]string
	Scoped   bool // CLI client accepts --scope
	detected string
}

// Replaced in tests.
var (
	lookPath = exec.LookPath
	statPath = os.Stat
)

var editorClients = []editorClient{
	{ID: "claude_code", Name: "Claude Code", Binary: "claude", Scoped: true},
	{ID: "codex", Name: "Codex CLI", Binary: "codex"},
	{
		ID: "vscode", Name: "VS Code",
		Markers: []string{".vscode"},
		Config:  func() string { return filepath.Join(".vscode", "mcp.json") },
		Key:     "servers",
		Extra:   map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", Name: "Cursor",
		Markers: []string{".cursor"},
		Config:  func() string { return filepath.Join(".cursor", "mcp.json") },
		Key:     "mcpServers",
	},
	{ID: "claude_desktop", Name: "Claude Desktop", Config: desktopConfigPath, Key: "mcpServers"},
}

func desktopConfigPath() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

// detectClients returns the clients present on this machine or in the
// current project, with the config path resolved for file clients.
func detectClients() []editorClient {
	var found []editorClient
	for _, c := range editorClients {
		if c.Binary != "" {
			if _, err := lookPath(c.Binary); err == nil {
				found = append(found, c)
			}
			continue
		}

		path := c.Config()
		present := false
		if len(c.Markers) == 0 {
			_, err := statPath(filepath.Dir(path))
			present = err == nil
		}
		for _, m := range c.Markers {
			if _, err := statPath(m); err == nil {
				present = true
				break
			}
		}
		if present {
			c.detected = path
			found = append(found, c)
		}
	}
	return found
}

// serverEntry is the JSON object that launches the MCP server.
func serverEntry(extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": "esmshift",
		"args":    []any{"serve"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerConfig adds an esmshift entry under key to the JSON document
// existing, which may be empty. It returns nil when the entry is already
// there.
func mergeServerConfig(existing []byte, key string, extra map[string]string) ([]byte, error) {
	doc := map[string]any{}
	if len(strings.TrimSpace(string(existing))) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := doc[key].(map[string]any)
	if !ok {
		servers = map[string]any{}
	}
	if _, ok := servers[serverName]; ok {
		return nil, nil
	}
	servers[serverName] = serverEntry(extra)
	doc[key] = servers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

const serverName = "esmshift"

// registered reports whether the config file at path already lists esmshift.
func registered(path, key string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	merged, err := mergeServerConfig(data, key, nil)
	return err == nil && merged == nil
}

func registerFile(c editorClient, path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	merged, err := mergeServerConfig(existing, c.Key, c.Extra)
	if err != nil || merged == nil {
		return false, err
	}
	return true, os.WriteFile(path, merged, 0o644)
}

func registerCLI(c editorClient, scope string, stdout, stderr io.Writer) error {
	args := []string{"mcp", "add"}
	if c.Scoped && scope != "" {
		args = append(args, "--scope", scope)
	}
	args = append(args, serverName, "--", "esmshift", "serve")
	cmd := exec.Command(c.Binary, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// confirm asks a yes/no question; an empty answer or EOF means yes.
func confirm(in *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [Y/n] ", question)
	if !in.Scan() {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "", "y", "yes":
		return true
	}
	return false
}

// chooseScope returns "project", "user" or "" to skip.
func chooseScope(in *bufio.Scanner, w io.Writer, name string) string {
	fmt.Fprintf(w, "%s: register for [1] this project, [2] your user, [3] skip? ", name)
	if !in.Scan() {
		return "project"
	}
	switch strings.TrimSpace(in.Text()) {
	case "", "1":
		return "project"
	case "2":
		return "user"
	}
	return ""
}

// runSetup registers the MCP server with every detected client.
func runSetup(r io.Reader, w io.Writer, auto bool) error {
	clients := detectClients()
	if len(clients) == 0 {
		fmt.Fprintln(w, "No MCP clients detected.")
		return nil
	}

	in := bufio.NewScanner(r)
	fmt.Fprintln(w, "Detected MCP clients:")
	for _, c := range clients {
		if c.detected != "" && registered(c.detected, c.Key) {
			fmt.Fprintf(w, "  * %s (already registered)\n", c.Name)
			continue
		}
		fmt.Fprintf(w, "  * %s\n", c.Name)
	}

	var failed int
	for _, c := range clients {
		if c.Binary != "" {
			scope := "project"
			if !auto && c.Scoped {
				if scope = chooseScope(in, w, c.Name); scope == "" {
					continue
				}
			} else if !auto && !confirm(in, w, "Register with "+c.Name+"?") {
				continue
			}
			if err := registerCLI(c, scope, w, w); err != nil {
				fmt.Fprintf(w, "  ! %s: %v\n", c.Name, err)
				failed++
				continue
			}
			fmt.Fprintf(w, "  + %s registered\n", c.Name)
			continue
		}

		if registered(c.detected, c.Key) {
			continue
		}
		if !auto && !confirm(in, w, fmt.Sprintf("Add esmshift to %s?", c.detected)) {
			continue
		}
		if _, err := registerFile(c, c.detected); err != nil {
			fmt.Fprintf(w, "  ! %s: %v\n", c.Name, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "  + %s registered (%s)\n", c.Name, c.detected)
	}

	if failed > 0 {
		return fmt.Errorf("%d client(s) could not be registered", failed)
	}
	return nil
}

func newSetupCmd(a *app) *cobra.Command {
	var auto bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the esmshift MCP server with detected editors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(a.stdin, a.stdout, auto)
		},
	}
	cmd.Flags().BoolVarP(&auto, "yes", "y", false, "register with every detected client without prompting")
	return cmd
}
