package confkit

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads environment variables from .env files discovered
// between this source file and the repository root. The first call does the
// work; later calls are no-ops. Values already present in the environment
// win unless DOTENV_OVERLOAD=1 is set, and NO_DOTENV=1 disables loading
// entirely.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}

	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		_ = load()
		return
	}
	walkUp(filepath.Dir(file), func(dir string) bool {
		_ = load(filepath.Join(dir, ".env"))
		return isRepoRoot(dir)
	})
}
