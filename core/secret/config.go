package secret

// Config holds configuration for profile credential encryption.
type Config struct {
	// IdentityPath is the age X25519 identity file. It is created on first use.
	IdentityPath string `mapstructure:"identity_path" default:"flow-vault.key"`
}
