package serve

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/marcus/jobdesk/internal/config"
)

const (
	portFileName     = "serve-port"
	portLockFileName = "serve-port.lock"
	instancePrefix   = "srv_"
	healthTimeout    = 2 * time.Second
	lockTimeout      = 5 * time.Second
)

// PortInfo is what a running `jobdesk serve` registers in .jobdesk/serve-port
// so consoles and record commands can find it.
type PortInfo struct {
	Port       int       `json:"port"`
	Addr       string    `json:"addr,omitempty"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	InstanceID string    `json:"instance_id"`
	Workflow   string    `json:"workflow,omitempty"`
}

// URL is the base address clients use. Wildcard and empty bind addresses
// are reached over loopback.
func (p *PortInfo) URL() string {
	host := p.Addr
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(p.Port))
}

func (p *PortInfo) validate() error {
	switch {
	case p.Port <= 0:
		return errors.New("port file missing required field: port")
	case p.PID <= 0:
		return errors.New("port file missing required field: pid")
	case p.InstanceID == "":
		return errors.New("port file missing required field: instance_id")
	}
	return nil
}

// GenerateInstanceID returns "srv_" followed by six random hex digits.
func GenerateInstanceID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate instance id: %w", err)
	}
	return instancePrefix + hex.EncodeToString(b), nil
}

func stateDir(baseDir string) string {
	return filepath.Join(baseDir, config.DirName)
}

func portFilePath(baseDir string) string {
	return filepath.Join(stateDir(baseDir), portFileName)
}

// withPortLock runs fn while holding the lock file next to the port file.
func withPortLock(baseDir string, fn func() error) error {
	if err := os.MkdirAll(stateDir(baseDir), 0755); err != nil {
		return fmt.Errorf("create %s: %w", config.DirName, err)
	}
	f, err := os.OpenFile(filepath.Join(stateDir(baseDir), portLockFileName), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open port lock file: %w", err)
	}
	defer f.Close()

	deadline := time.Now().Add(lockTimeout)
	backoff := 5 * time.Millisecond
	for tryLock(f) != nil {
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout after %v waiting for port file lock", lockTimeout)
		}
		time.Sleep(backoff)
		backoff = min(backoff*2, 50*time.Millisecond)
	}
	defer unlock(f)
	return fn()
}

// WritePortFile registers info in baseDir. It fails while another live
// server is registered there.
func WritePortFile(baseDir string, info *PortInfo) error {
	if err := info.validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal port info: %w", err)
	}
	return withPortLock(baseDir, func() error {
		// another process may have registered between our start and the lock
		if existing, err := ReadPortFile(baseDir); err == nil && !IsPortFileStale(existing) {
			return fmt.Errorf("jobdesk serve already running on port %d (pid %d)", existing.Port, existing.PID)
		}
		if err := os.WriteFile(portFilePath(baseDir), data, 0644); err != nil {
			return fmt.Errorf("write port file: %w", err)
		}
		return nil
	})
}

// ReadPortFile returns the registered server. A missing file or one without
// port, pid and instance id is an error.
func ReadPortFile(baseDir string) (*PortInfo, error) {
	data, err := os.ReadFile(portFilePath(baseDir))
	if err != nil {
		return nil, fmt.Errorf("read port file: %w", err)
	}
	var info PortInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse port file: %w", err)
	}
	if err := info.validate(); err != nil {
		return nil, err
	}
	return &info, nil
}

// DeletePortFile unregisters the server. A missing file is not an error.
func DeletePortFile(baseDir string) error {
	if err := os.Remove(portFilePath(baseDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove port file: %w", err)
	}
	return nil
}

// IsServerHealthy reports whether GET /health on the registered address
// answers 200 from the registered instance. A different instance on a
// reused port does not count.
func IsServerHealthy(info *PortInfo) bool {
	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(info.URL() + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body struct {
		Data struct {
			InstanceID string `json:"instance_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Data.InstanceID == info.InstanceID
}

// IsPortFileStale reports whether info describes a server that is gone: its
// process has exited or it no longer answers health checks.
func IsPortFileStale(info *PortInfo) bool {
	return !processAlive(info.PID) || !IsServerHealthy(info)
}

// DiscoverURL returns the address of the server registered in baseDir. It
// fails when none is registered or the registered one is not responding.
func DiscoverURL(baseDir string) (string, error) {
	info, err := ReadPortFile(baseDir)
	if err != nil {
		return "", fmt.Errorf("no running jobdesk serve: %w", err)
	}
	if IsPortFileStale(info) {
		return "", fmt.Errorf("jobdesk serve on port %d (pid %d) is not responding", info.Port, info.PID)
	}
	return info.URL(), nil
}
