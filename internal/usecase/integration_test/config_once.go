package integrationtest

import (
	"os"
	"sync"

	"github.com/Klaiveft/What2Watch/internal/config"
)

var (
	cfg     *config.Config
	cfgErr  error
	cfgOnce sync.Once
)

// getConfig reads the env file named by W2W_TEST_ENV, or .env.
func getConfig() (*config.Config, error) {
	cfgOnce.Do(func() {
		cfg, cfgErr = config.FromFile(os.Getenv("W2W_TEST_ENV"))
	})
	return cfg, cfgErr
}

func integrationEnabled() bool {
	return os.Getenv("W2W_INTEGRATION") != ""
}
