package config

import "flag"

// Play holds cmd/play settings.
type Play struct {
	URL  string `env:"GEOCOIN_WS_URL" envDefault:"ws://127.0.0.1:8080/v1/ws"`
	Name string `env:"GEOCOIN_CLIENT_NAME" envDefault:"play"`
}

func ParsePlay(fs *flag.FlagSet, args []string) (Play, error) {
	var cfg Play
	if err := ParseEnv(&cfg); err != nil {
		return Play{}, err
	}
	fs.StringVar(&cfg.URL, "url", cfg.URL, "server websocket url")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "client name sent in HELLO")
	if err := fs.Parse(args); err != nil {
		return Play{}, err
	}
	return cfg, nil
}
