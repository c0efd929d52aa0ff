// Package remote fetches collaborator library files over SSH.
package remote

import (
	"fmt"
	"strings"
)

// Target identifies a file on a remote host, written [user@]host:path.
type Target struct {
	User string
	Host string
	Path string
}

// ParseTarget parses scp-style [user@]host:path syntax. The first
// colon separates host from path, so paths may themselves contain
// colons.
func ParseTarget(s string) (Target, error) {
	i := strings.Index(s, ":")
	if i < 0 {
		return Target{}, fmt.Errorf("remote target %q must look like [user@]host:path", s)
	}

	t := Target{Host: s[:i], Path: s[i+1:]}
	if j := strings.Index(t.Host, "@"); j >= 0 {
		t.User = t.Host[:j]
		t.Host = t.Host[j+1:]
	}

	if t.Host == "" {
		return Target{}, fmt.Errorf("remote target %q has no host", s)
	}
	if t.Path == "" {
		return Target{}, fmt.Errorf("remote target %q has no path", s)
	}
	return t, nil
}

// String renders the target back in [user@]host:path form.
func (t Target) String() string {
	if t.User != "" {
		return t.User + "@" + t.Host + ":" + t.Path
	}
	return t.Host + ":" + t.Path
}

// Client abstracts the fetch so commands can be tested without a
// network.
type Client interface {
	// FetchFile reads a file on the target host and returns its contents.
	FetchFile(target Target) ([]byte, error)
	// Close releases any resources held by the client.
	Close() error
}
