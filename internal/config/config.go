package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "organizer"
	DefaultConfigFileName = "config.toml"
	DefaultDataName       = "tasks.db"
	DefaultLogName        = "organizer.log"
)

type Keymap struct {
	Quit       string `toml:"quit"`
	New        string `toml:"new"`
	Up         string `toml:"up"`
	Down       string `toml:"down"`
	Toggle     string `toml:"toggle"`
	Delete     string `toml:"delete"`
	Edit       string `toml:"edit"`
	Confirm    string `toml:"confirm"`
	Cancel     string `toml:"cancel"`
	RemoveDone string `toml:"remove_done"`
	NextField  string `toml:"next_field"`
	PrevField  string `toml:"prev_field"`
}

type Log struct {
	Path   string `toml:"path"`
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	DataPath string `toml:"data_path"`
	Format   string `toml:"format"`
	Log      Log    `toml:"log"`
	Keys     Keymap `toml:"keys"`
}

// Dir is the per-user directory holding config, data and log files. It
// falls back to the working directory when no config home is known.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "."
	}
	return filepath.Join(base, AppName)
}

// ResolveConfigPath returns the default location of config.toml.
func ResolveConfigPath() string {
	return filepath.Join(Dir(), DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing defaults there first if
// the file does not exist. Empty fields are filled from defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.DataPath == "" {
		c.DataPath = d.DataPath
	}
	if c.Log.Path == "" {
		c.Log.Path = d.Log.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&c.Keys.Quit, d.Keys.Quit)
	fill(&c.Keys.New, d.Keys.New)
	fill(&c.Keys.Up, d.Keys.Up)
	fill(&c.Keys.Down, d.Keys.Down)
	fill(&c.Keys.Toggle, d.Keys.Toggle)
	fill(&c.Keys.Delete, d.Keys.Delete)
	fill(&c.Keys.Edit, d.Keys.Edit)
	fill(&c.Keys.Confirm, d.Keys.Confirm)
	fill(&c.Keys.Cancel, d.Keys.Cancel)
	fill(&c.Keys.RemoveDone, d.Keys.RemoveDone)
	fill(&c.Keys.NextField, d.Keys.NextField)
	fill(&c.Keys.PrevField, d.Keys.PrevField)
}

func Default() Config {
	dir := Dir()
	return Config{
		DataPath: filepath.Join(dir, DefaultDataName),
		Log: Log{
			Path:   filepath.Join(dir, DefaultLogName),
			Level:  "info",
			Format: "text",
		},
		Keys: Keymap{
			Quit:       "q",
			New:        "a",
			Up:         "k",
			Down:       "j",
			Toggle:     " ",
			Delete:     "d",
			Edit:       "e",
			Confirm:    "enter",
			Cancel:     "esc",
			RemoveDone: "D",
			NextField:  "tab",
			PrevField:  "shift+tab",
		},
	}
}
