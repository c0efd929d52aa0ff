package remote

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// Options holds SSH connection parameters.
type Options struct {
	ProxyJump      string // optional jump host
	ConnectTimeout int    // seconds, default 10
}

// SSHClient implements Client over real SSH connections, authenticating
// through the local SSH agent.
type SSHClient struct {
	opts       Options
	agentConn  net.Conn // connection to SSH agent, closed in Close()
	signers    []ssh.Signer
	localUser  string
	configPath string // overrides ~/.ssh/config in tests
}

var _ Client = (*SSHClient)(nil)

// NewSSHClient creates a client that authenticates via the SSH agent.
func NewSSHClient(opts Options) (*SSHClient, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10
	}

	authSock := os.Getenv("SSH_AUTH_SOCK")
	if authSock == "" {
		return nil, fmt.Errorf("SSH agent not running. Start with `eval $(ssh-agent)` and add keys with `ssh-add`")
	}

	conn, err := net.Dial("unix", authSock)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to SSH agent at %s: %w", authSock, err)
	}

	agentClient := agent.NewClient(conn)

	// Verify agent has keys
	keys, err := agentClient.List()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("listing SSH agent keys: %w", err)
	}
	if len(keys) == 0 {
		conn.Close()
		return nil, fmt.Errorf("SSH agent has no keys. Add keys with `ssh-add`")
	}

	signers, err := agentClient.Signers()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("getting SSH agent signers: %w", err)
	}

	localUser := ""
	if u, err := user.Current(); err == nil {
		localUser = u.Username
	}

	return &SSHClient{
		opts:      opts,
		agentConn: conn,
		signers:   signers,
		localUser: localUser,
	}, nil
}

// FetchFile connects to the target host (optionally via ProxyJump) and
// reads the target path.
func (c *SSHClient) FetchFile(target Target) ([]byte, error) {
	username := c.username(target)
	timeout := time.Duration(c.opts.ConnectTimeout) * time.Second

	// InsecureIgnoreHostKey disables host key verification. This is
	// acceptable for fetching from collaborators' machines you already
	// trust. For untrusted networks, use a known_hosts file instead.
	clientConfig := &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signers...)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	var client *ssh.Client
	var jumpClient *ssh.Client
	var err error

	if c.opts.ProxyJump != "" {
		client, jumpClient, err = c.dialViaProxy(target.Host, clientConfig, timeout)
		if jumpClient != nil {
			defer jumpClient.Close()
		}
	} else {
		client, err = ssh.Dial("tcp", target.Host+":22", clientConfig)
	}
	if err != nil {
		return nil, c.wrapSSHError(err, target.Host, username)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("creating SSH session on %s: %w", target.Host, err)
	}
	defer session.Close()

	var stderr bytes.Buffer
	session.Stderr = &stderr
	out, err := session.Output("cat " + shellQuote(target.Path))
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("reading %s on %s: %s", target.Path, target.Host, msg)
		}
		return nil, fmt.Errorf("reading %s on %s: %w", target.Path, target.Host, err)
	}
	return out, nil
}

// Close releases SSH client resources including the agent connection.
func (c *SSHClient) Close() error {
	if c.agentConn != nil {
		return c.agentConn.Close()
	}
	return nil
}

// username resolves the login name for a target: an explicit user@
// prefix wins, then ~/.ssh/config, then the local user.
func (c *SSHClient) username(t Target) string {
	if t.User != "" {
		return t.User
	}
	file := c.configPath
	if file == "" {
		file = defaultSSHConfigPath()
	}
	if u := sshConfigUserFromFile(file, t.Host); u != "" {
		return u
	}
	return c.localUser
}

// dialViaProxy connects to the target server through a ProxyJump host.
// Returns both the target client and the jump client; caller must close both.
func (c *SSHClient) dialViaProxy(target string, config *ssh.ClientConfig, timeout time.Duration) (client *ssh.Client, jumpClient *ssh.Client, err error) {
	// See comment in FetchFile about InsecureIgnoreHostKey.
	proxyConfig := &ssh.ClientConfig{
		User:            config.User,
		Auth:            config.Auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	jumpClient, err = ssh.Dial("tcp", c.opts.ProxyJump+":22", proxyConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot reach proxy %s: %w", c.opts.ProxyJump, err)
	}

	// Dial target through the proxy
	targetConn, err := jumpClient.Dial("tcp", target+":22")
	if err != nil {
		jumpClient.Close()
		return nil, nil, fmt.Errorf("cannot reach %s through proxy %s: %w", target, c.opts.ProxyJump, err)
	}

	ncc, chans, reqs, err := ssh.NewClientConn(targetConn, target+":22", config)
	if err != nil {
		targetConn.Close()
		jumpClient.Close()
		return nil, nil, fmt.Errorf("SSH handshake with %s failed: %w", target, err)
	}

	return ssh.NewClient(ncc, chans, reqs), jumpClient, nil
}

// wrapSSHError produces actionable error messages based on SSH error types.
func (c *SSHClient) wrapSSHError(err error, server, username string) error {
	errStr := err.Error()

	// Check for common SSH error patterns
	switch {
	case strings.Contains(errStr, "no supported methods remain"):
		return fmt.Errorf("SSH authentication failed for %s as %s. Check ~/.ssh/config and ensure your key is authorized", server, username)
	case strings.Contains(errStr, "i/o timeout") || strings.Contains(errStr, "connection timed out"):
		if c.opts.ProxyJump != "" && strings.Contains(errStr, c.opts.ProxyJump) {
			return fmt.Errorf("cannot reach proxy %s: connection timed out", c.opts.ProxyJump)
		}
		return fmt.Errorf("connection to %s timed out", server)
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("connection refused by %s (is SSH running on the server?)", server)
	default:
		return fmt.Errorf("SSH error connecting to %s: %w", server, err)
	}
}

// shellQuote single-quotes a path for the remote shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func defaultSSHConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "config")
}

// sshConfigUserFromFile scans an OpenSSH config file for the first Host
// block matching host and returns its User. Patterns support the usual
// * and ? globs; blocks apply in file order.
func sshConfigUserFromFile(file, host string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		return ""
	}

	type block struct {
		patterns []string
		user     string
	}
	var blocks []*block
	var cur *block

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch {
		case strings.EqualFold(fields[0], "Host"):
			cur = &block{patterns: fields[1:]}
			blocks = append(blocks, cur)
		case strings.EqualFold(fields[0], "User") && cur != nil:
			if cur.user == "" {
				cur.user = fields[1]
			}
		}
	}

	for _, b := range blocks {
		if b.user == "" {
			continue
		}
		for _, pat := range b.patterns {
			if ok, _ := filepath.Match(pat, host); ok {
				return b.user
			}
		}
	}
	return ""
}
