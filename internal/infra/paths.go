package infra

import (
	"os"
	"os/user"
	"path/filepath"
)

// ExecMode represents whether the monitor runs for one user or system-wide.
type ExecMode string

const (
	// ExecModeUser keeps state under the invoking user's home directory
	ExecModeUser ExecMode = "user"
	// ExecModeSystem keeps state under /var (running as root)
	ExecModeSystem ExecMode = "system"
)

// RuntimePaths holds the on-disk locations used by a running monitor.
type RuntimePaths struct {
	Mode       ExecMode
	DataDir    string // Journal database and key
	LogPath    string // Structured log file
	SocketPath string // Default notification socket
}

// DetectPaths derives runtime paths from the effective UID.
func DetectPaths() RuntimePaths {
	if os.Geteuid() == 0 {
		return RuntimePaths{
			Mode:       ExecModeSystem,
			DataDir:    "/var/lib/focusmon",
			LogPath:    "/var/log/focusmon.log",
			SocketPath: "/run/focusmon/notifications.sock",
		}
	}
	return UserPaths(GetRealUserHome())
}

// UserPaths returns user-mode paths rooted at home.
func UserPaths(home string) RuntimePaths {
	dataDir := filepath.Join(home, ".focusmon")
	return RuntimePaths{
		Mode:       ExecModeUser,
		DataDir:    dataDir,
		LogPath:    filepath.Join(dataDir, "focusmon.log"),
		SocketPath: filepath.Join(dataDir, "notifications.sock"),
	}
}

// String returns a human-readable description of the mode.
func (m ExecMode) String() string {
	switch m {
	case ExecModeSystem:
		return "system (root)"
	case ExecModeUser:
		return "user (non-root)"
	default:
		return "unknown"
	}
}

// GetRealUserHome returns the real user's home directory, even when running under sudo.
func GetRealUserHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}
