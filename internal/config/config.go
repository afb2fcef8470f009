package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultChannelID = "LedgerApp"
const defaultChannelKey = "LedgerKey001"
const defaultPollInitialDelay = 5 * time.Second
const defaultPollPeriod = 5 * time.Second
const defaultShutdownGrace = 5 * time.Second

type Config struct {
	DatabaseDSN      string
	MigrationsDir    string
	HTTPAddr         string
	ChannelID        string
	ChannelKey       string
	PollInitialDelay time.Duration
	PollPeriod       time.Duration
	WorkerCount      int
	ShutdownGrace    time.Duration
}

func Load() (Config, error) {
	conn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if conn == "" {
		conn = defaultConnectionString
	}

	migrationsDir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}

	channelID := strings.TrimSpace(os.Getenv("CHANNEL_ID"))
	if channelID == "" {
		channelID = defaultChannelID
	}

	channelKey := strings.TrimSpace(os.Getenv("CHANNEL_KEY"))
	if channelKey == "" {
		channelKey = defaultChannelKey
	}

	pollInitialDelay, err := durationEnv("POLL_INITIAL_DELAY", defaultPollInitialDelay)
	if err != nil {
		return Config{}, err
	}

	pollPeriod, err := durationEnv("POLL_PERIOD", defaultPollPeriod)
	if err != nil {
		return Config{}, err
	}

	shutdownGrace, err := durationEnv("SHUTDOWN_GRACE", defaultShutdownGrace)
	if err != nil {
		return Config{}, err
	}

	workerCount, err := intEnv("WORKER_COUNT", 2*runtime.GOMAXPROCS(0))
	if err != nil {
		return Config{}, err
	}
	if workerCount < 1 {
		return Config{}, fmt.Errorf("WORKER_COUNT must be at least 1")
	}

	return Config{
		DatabaseDSN:      normalizeConnectionString(conn),
		MigrationsDir:    migrationsDir,
		HTTPAddr:         httpAddr,
		ChannelID:        channelID,
		ChannelKey:       channelKey,
		PollInitialDelay: pollInitialDelay,
		PollPeriod:       pollPeriod,
		WorkerCount:      workerCount,
		ShutdownGrace:    shutdownGrace,
	}, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s cannot be negative", name)
	}
	return value, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
