package config

// Settings represents the entire user configuration file.
type Settings struct {
	Version     int          `yaml:"version"`
	Entry       *EntryPrefs  `yaml:"entry,omitempty"`
	Verifier    *VerifierCfg `yaml:"verifier,omitempty"`
	ServerAddr  string       `yaml:"server_addr,omitempty"`  // default bind address for `otpgate-server`
	LogLevel    string       `yaml:"log_level,omitempty"`    // overridden by OTPGATE_LOG_LEVEL
	AnnounceSvc bool         `yaml:"announce_mdns"`          // announce the server via mDNS
}

// EntryPrefs configures the entry widget.
type EntryPrefs struct {
	// AutoSubmit triggers verification when the sixth digit lands.
	AutoSubmit bool `yaml:"auto_submit"`
	// MaxAttempts locks the prompt after this many failed verifications.
	// Zero means unlimited.
	MaxAttempts int `yaml:"max_attempts"`
}

// VerifierCfg selects and configures the verification collaborator.
type VerifierCfg struct {
	// Mode is one of "static", "totp", "remote".
	Mode string `yaml:"mode"`
	// Code is the expected code for static mode.
	Code string `yaml:"code,omitempty"`
	// TOTPSecret is the base32 secret for totp mode.
	// Prefer the OTPGATE_TOTP_SECRET environment variable over storing a
	// real secret here.
	TOTPSecret string `yaml:"totp_secret,omitempty"`
	// RemoteURL is the ws:// endpoint for remote mode.
	RemoteURL string `yaml:"remote_url,omitempty"`
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Entry: &EntryPrefs{
			AutoSubmit:  true,
			MaxAttempts: 0,
		},
		Verifier: &VerifierCfg{
			Mode: "static",
		},
		ServerAddr: "127.0.0.1:8970",
	}
}
