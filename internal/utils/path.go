package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// PathResolver locates the config directory and resolves relative dataset paths.
type PathResolver struct {
	app       string
	execDir   string
	homeDir   string
	configDir string
}

// NewPathResolver builds a resolver for the named application.
func NewPathResolver(app string) *PathResolver {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}
	execDir, err := ExecutableDir()
	if err != nil {
		log.Debugf("Could not determine executable directory: %v", err)
	}

	pr := &PathResolver{
		app:       app,
		execDir:   execDir,
		homeDir:   homeDir,
		configDir: platformConfigDir(app, homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", execDir, pr.configDir)
	return pr
}

func platformConfigDir(app, homeDir string) string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, app)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", app)
	case "darwin", "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, app)
		}
		return filepath.Join(homeDir, ".config", app)
	default:
		return filepath.Join(homeDir, "."+app)
	}
}

// ConfigDir returns the preferred config directory. It may not exist yet.
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// ConfigPath returns a writable location for filename, trying the config
// directory first, then the macOS application support directory, then the
// executable directory.
func (pr *PathResolver) ConfigPath(filename string) (string, bool) {
	dirs := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "Library", "Application Support", pr.app),
	}
	if pr.execDir != "" {
		dirs = append(dirs, pr.execDir)
	}
	for i, dir := range dirs {
		if CheckDirStatus(dir).Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path, true
		}
	}
	return "", false
}

// ResolveDataPath resolves a relative dataset path or glob. Absolute paths and
// patterns are returned unchanged. Otherwise the working directory, the config
// directory and the executable directory are tried in that order.
func (pr *PathResolver) ResolveDataPath(path string) string {
	if path == "" || filepath.IsAbs(path) || strings.ContainsAny(path, "*?[{") {
		return path
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, path))
	}
	candidates = append(candidates, filepath.Join(pr.configDir, path))
	if pr.execDir != "" {
		candidates = append(candidates, filepath.Join(pr.execDir, path))
	}

	for _, candidate := range candidates {
		if FileExists(candidate) {
			log.Debugf("Resolved dataset path %s to %s", path, candidate)
			return candidate
		}
		log.Debugf("Dataset candidate not found: %s", candidate)
	}
	return path
}

// RuntimeInfo reports where things are looked up, for the -v banner and debugging.
func (pr *PathResolver) RuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	info := map[string]string{
		"executable_dir": pr.execDir,
		"current_dir":    cwd,
		"config_dir":     pr.configDir,
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
	}
	for _, env := range []string{"XDG_CONFIG_HOME", "APPDATA"} {
		if value := os.Getenv(env); value != "" {
			info["env_"+strings.ToLower(env)] = value
		}
	}
	return info
}
