// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory, mainly for tests.
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
// os.UserHomeDir() does not reliably respect HOME on every platform, so tests
// and the CLI's testscript suite use this instead.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
