package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/config"
)

var (
	configPath string
	apiURL     string
	wsURL      string
	userID     string
	token      string
	logLevel   string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arena",
		Short: "Quiz Battle Royale client: play, spectate and host live arenas",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envOr("QBR_CONFIG", "config/config.yaml"), "path to YAML config")
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", os.Getenv("QBR_API_URL"), "REST API base URL")
	cmd.PersistentFlags().StringVar(&wsURL, "ws-url", os.Getenv("QBR_WS_URL"), "realtime websocket URL")
	cmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("QBR_USER_ID"), "user id (generated if empty)")
	cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("QBR_TOKEN"), "API bearer token")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("QBR_LOG_LEVEL", ""), "log level (trace..error)")

	cmd.AddCommand(newPlayCmd())
	cmd.AddCommand(newHostCmd())
	cmd.AddCommand(newArenasCmd())
	return cmd
}

// loadConfig layers flags over the YAML file over defaults. A missing
// config file is not an error; the defaults stand.
func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil && !os.IsNotExist(err) {
		logger := zerolog.New(os.Stderr)
		logger.Warn().Err(err).Str("path", configPath).Msg("config file unreadable, using defaults")
	}
	if apiURL != "" {
		cfg.Server.APIURL = apiURL
	}
	if wsURL != "" {
		cfg.Server.WSURL = wsURL
	}
	if token != "" {
		cfg.Auth.Token = token
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
