package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
)

// AppConfig carries everything main needs to wire the program.
type AppConfig struct {
	Endpoint    string
	ExportDir   string
	NoAltScreen bool
	// AttachPaths are positional PDF arguments preloaded into the queue.
	AttachPaths []string
}

// Parse resolves configuration in order: .env file (best effort), flags, then
// the DOCDECK_API environment variable as the endpoint fallback. The final
// default is applied by the api client itself.
func Parse() (AppConfig, error) {
	_ = godotenv.Load()
	return parseWith(flag.NewFlagSet("docdeck", flag.ExitOnError), os.Args[1:])
}

func parseWith(fs *flag.FlagSet, args []string) (AppConfig, error) {
	var cfg AppConfig
	fs.StringVar(&cfg.Endpoint, "endpoint", "", "knowledge-base backend URL (default $DOCDECK_API or http://localhost:8000)")
	fs.StringVar(&cfg.ExportDir, "export-dir", "exports", "directory for transcript exports")
	fs.BoolVar(&cfg.NoAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = os.Getenv("DOCDECK_API")
	}
	cfg.AttachPaths = fs.Args()
	return cfg, nil
}
