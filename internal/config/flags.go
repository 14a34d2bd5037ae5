package config

import "github.com/spf13/pflag"

// Flags holds CLI overrides. Zero values leave the loaded config untouched.
type Flags struct {
	Config  string
	Debug   bool
	LogFile string
	Width   int
	Height  int
	Catalog string
	Store   string
	Reapply string
	NoFit   bool
}

// Bind registers the flags on a flag set, typically a cobra command's persistent flags.
func (f *Flags) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to a rotating file")
	fs.IntVar(&f.Width, "width", 0, "Viewport width")
	fs.IntVar(&f.Height, "height", 0, "Viewport height")
	fs.StringVar(&f.Catalog, "catalog", "", "Path to the system texture catalog")
	fs.StringVar(&f.Store, "store", "", "Path to the session database")
	fs.StringVar(&f.Reapply, "reapply", "", "Material class reapply mode (legacy|defined)")
	fs.BoolVar(&f.NoFit, "no-fit", false, "Keep the model's original scale and position")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Width > 0 {
		cfg.Viewport.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Viewport.Height = f.Height
	}
	if f.Catalog != "" {
		cfg.Textures.CatalogPath = f.Catalog
	}
	if f.Store != "" {
		cfg.Store.Path = f.Store
	}
	if f.Reapply != "" {
		cfg.Editor.ReapplyMode = f.Reapply
	}
	if f.NoFit {
		cfg.Editor.Fit = false
	}
}
