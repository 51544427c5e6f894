package config

import (
	"os"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string // sqlite|postgres|memory
	DBDSN    string

	// Remote mirror of finalized templates. Empty URL disables sync.
	RemoteBaseURL string
	RemoteTimeout time.Duration

	AuthSecret      string
	TeacherUser     string
	TeacherPassHash string // bcrypt

	// Extra choice symbols beyond A-E are configured here, e.g. "A,B,C,D".
	ChoiceAlphabet []string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: addr,

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		RemoteBaseURL: os.Getenv("REMOTE_API_URL"),
		RemoteTimeout: envDur("REMOTE_TIMEOUT", 15*time.Second),

		AuthSecret:  envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TeacherUser: envOr("TEACHER_USER", "professor"),
		// bcrypt("professor"), dev only
		TeacherPassHash: envOr("TEACHER_PASS_HASH", "$2a$12$N1U9sYvS6SLYYYTInSkSWuO3kYybasN9mHqzGybCUs3M7Sv6qS3V6"),

		ChoiceAlphabet: csvOr("CHOICE_ALPHABET", "A,B,C,D,E"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://app.testify.example.com"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:19006"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
