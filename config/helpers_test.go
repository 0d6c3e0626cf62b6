// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"testing"
)

// withCleanEnv clears the environment and returns a cleanup function that
// restores the original env. Use with t.Cleanup().
func withCleanEnv(t *testing.T) func() {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()

	return func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}
}

// withCleanReasonerEnv clears the environment, sets the required reasoner env
// vars to test values, and returns a cleanup function that restores the
// original env. Use with t.Cleanup().
func withCleanReasonerEnv(t *testing.T) func() {
	t.Helper()
	return withCleanReasonerEnvAndExtra(t, nil)
}

// withCleanReasonerEnvAndExtra clears the environment, sets required reasoner
// env vars plus additional vars, and returns a cleanup function that restores
// the original env. Use with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withCleanReasonerEnvAndExtra(t, map[string]string{
//	        "TELEMETRY_MODE": "none",
//	    }))
//	}
func withCleanReasonerEnvAndExtra(t *testing.T, extra map[string]string) func() {
	t.Helper()

	cleanup := withCleanEnv(t)

	os.Setenv("REASONER_URL", "https://reasoner.test.com")
	os.Setenv("REASONER_API_KEY", "test-key")

	for key, value := range extra {
		os.Setenv(key, value)
	}

	return cleanup
}
