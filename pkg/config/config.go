package config

// Config is the fully merged fsbridge configuration
type Config struct {
	Log    Log    `koanf:"log"`
	Watch  Watch  `koanf:"watch"`
	Bridge Bridge `koanf:"bridge"`
}

// Log configures pkg/logging
type Log struct {
	Verbosity int    `koanf:"verbosity"`
	File      string `koanf:"file"`
}

// Watch configures the filesystem watch adapter
type Watch struct {
	Ignore []string `koanf:"ignore"`
	Buffer int      `koanf:"buffer"`
}

// Bridge configures the session driver
type Bridge struct {
	Queue int `koanf:"queue"`
}
