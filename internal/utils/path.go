package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppDirName is the per-user directory name for config and data.
const AppDirName = "destserve"

// dataFileNames are tried in order inside a candidate data directory.
var dataFileNames = []string{"destinations.idx", "destinations.json"}

// PathResolver resolves data and config locations relative to the binary
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver creates a resolver anchored at the running executable
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     configDirFor(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// NewPathResolverAt creates a resolver with explicit locations, mostly for tests.
func NewPathResolverAt(executableDir, configDir string) *PathResolver {
	return &PathResolver{
		executableDir: executableDir,
		homeDir:       configDir,
		configDir:     configDir,
	}
}

// configDirFor returns the platform config directory
func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppDirName)
		}
		return filepath.Join(homeDir, ".config", AppDirName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppDirName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppDirName)
	default:
		return filepath.Join(homeDir, ".config", AppDirName)
	}
}

// GetDataFile resolves the destination file to load.
// userPath may name a file directly or a directory holding one of the known
// data files. Candidates are, in order: userPath as given, relative to the
// executable, relative to the working dir, then <execDir>/data and <configDir>/data.
// When nothing matches, the first candidate is returned for error reporting.
func (pr *PathResolver) GetDataFile(userPath string) string {
	var candidates []string
	if filepath.IsAbs(userPath) {
		candidates = append(candidates, userPath)
	} else {
		candidates = append(candidates, filepath.Join(pr.executableDir, userPath))
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, userPath))
		}
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(pr.configDir, "data"),
	)

	for _, candidate := range candidates {
		if file, ok := findDataFile(candidate); ok {
			log.Debugf("Found destination data: %s", file)
			return file
		}
		log.Debugf("Data candidate not valid: %s", candidate)
	}
	return candidates[0]
}

func findDataFile(path string) (string, bool) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if !stat.IsDir() {
		return path, true
	}
	for _, name := range dataFileNames {
		file := filepath.Join(path, name)
		if FileExists(file) {
			return file, true
		}
	}
	return "", false
}

// GetConfigPath returns the full path for a config file, falling back to
// writable locations when the config dir can't be used
func (pr *PathResolver) GetConfigPath(filename string) string {
	dirs := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "."+AppDirName),
		filepath.Join(os.TempDir(), AppDirName),
		pr.executableDir,
	}
	for i, dir := range dirs {
		if CheckDirStatus(dir).Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path
		}
	}
	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath
}

// GetConfigDir returns the config directory
func (pr *PathResolver) GetConfigDir() string {
	return pr.configDir
}
