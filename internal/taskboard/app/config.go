package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/jwtx"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// MinSecretLength is the shortest HS256 signing key accepted at startup.
const MinSecretLength = 32

const (
	RevocationBackendSQLite = "sqlite"
	RevocationBackendMemory = "memory"
)

type Config struct {
	JWTSecret string // Required: HMAC signing key for every token

	AccessTTL        time.Duration // Access token lifetime (default: 1h)
	RefreshTTL       time.Duration // Refresh token lifetime (default: 7d)
	ClockSkew        time.Duration // Leeway applied to exp/nbf checks (default: 60s)
	IdentityCacheTTL time.Duration // Identity cache lifetime, 0 disables (default: 0)

	Admission          httpx.AdmissionConfig // Credential endpoint bucket (default: 10 per minute)
	AdmissionPerClient bool                  // Key the bucket by client IP instead of sharing one

	RevocationBackend string // sqlite or memory (default: sqlite)

	BootstrapAdminEmail    string // Optional: first admin created on an empty database
	BootstrapAdminPassword string // Optional: generated and logged when empty

	DatabaseFile         string        // Path to SQLite database file (default: ./taskboard.db)
	PepperFile           string        // Path to the password pepper (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Revocation pruning interval (default: 1h)
}

// NewConfig returns a Config holding every default. The signing key has no
// default.
func NewConfig() *Config {
	return &Config{
		AccessTTL:            jwtx.DefaultAccessTokenTTL,
		RefreshTTL:           jwtx.DefaultRefreshTokenTTL,
		ClockSkew:            jwtx.DefaultLeeway,
		Admission:            httpx.DefaultAdmissionConfig(),
		RevocationBackend:    RevocationBackendSQLite,
		DatabaseFile:         "taskboard.db",
		PepperFile:           "pepper",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
	}
}

// LoadConfig layers defaults, the working directory .env file, the process
// environment and finally command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.LoadDotEnv(os.Getwd); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.LoadEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.ParseFlags(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load variables from a '.env' file in the working directory. A missing file
// is not an error.
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

// LoadEnv applies every non-empty variable returned by getenv. Values that
// fail to parse are reported together.
func (c *Config) LoadEnv(getenv func(string) string) error {
	var errs []error

	setString := func(o *string) func(string) {
		return func(v string) { *o = v }
	}
	setInt := func(o *int) func(string) {
		return func(v string) {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid integer %q", v))
				return
			}
			*o = n
		}
	}
	setBool := func(o *bool) func(string) {
		return func(v string) {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid boolean %q", v))
				return
			}
			*o = b
		}
	}
	setDuration := func(o *time.Duration) func(string) {
		return func(v string) {
			d, err := parseDuration(v)
			if err != nil {
				errs = append(errs, err)
				return
			}
			*o = d
		}
	}

	envMap := map[string]func(string){
		"JWT_SECRET":                     setString(&c.JWTSecret),
		"TASKS_ACCESS_TTL":               setDuration(&c.AccessTTL),
		"TASKS_REFRESH_TTL":              setDuration(&c.RefreshTTL),
		"TASKS_CLOCK_SKEW":               setDuration(&c.ClockSkew),
		"TASKS_IDENTITY_CACHE_TTL":       setDuration(&c.IdentityCacheTTL),
		"TASKS_ADMISSION_CAPACITY":       setInt(&c.Admission.Capacity),
		"TASKS_ADMISSION_REFILL":         setInt(&c.Admission.Refill),
		"TASKS_ADMISSION_INTERVAL":       setDuration(&c.Admission.Interval),
		"TASKS_ADMISSION_PER_CLIENT":     setBool(&c.AdmissionPerClient),
		"TASKS_REVOCATION_BACKEND":       setString(&c.RevocationBackend),
		"TASKS_BOOTSTRAP_ADMIN_EMAIL":    setString(&c.BootstrapAdminEmail),
		"TASKS_BOOTSTRAP_ADMIN_PASSWORD": setString(&c.BootstrapAdminPassword),
		"DATABASE_FILE":                  setString(&c.DatabaseFile),
		"PEPPER_FILE":                    setString(&c.PepperFile),
		"ENV":                            setString(&c.Env),
		"LOG_LEVEL":                      setString(&c.LogLevel),
		"LOG_FORMAT":                     setString(&c.LogFormat),
		"PORT":                           setInt(&c.Port),
		"SHUTDOWN_GRACE_PERIOD":          setDuration(&c.ShutdownGracePeriod),
		"HOUSEKEEPING_INTERVAL":          setDuration(&c.HousekeepingInterval),
	}

	for key, parseFn := range envMap {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			continue
		}
		before := len(errs)
		parseFn(value)
		if len(errs) > before {
			errs[len(errs)-1] = fmt.Errorf("%s: %w", key, errs[len(errs)-1])
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("taskboard", pflag.ContinueOnError)

	fs.StringVarP(&c.JWTSecret, "jwt-secret", "s", c.JWTSecret, "HMAC signing key for tokens")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime")
	fs.DurationVar(&c.ClockSkew, "clock-skew", c.ClockSkew, "Allowed clock skew when checking token times")
	fs.DurationVar(&c.IdentityCacheTTL, "identity-cache-ttl", c.IdentityCacheTTL, "Identity cache lifetime (0 disables)")
	fs.IntVar(&c.Admission.Capacity, "admission-capacity", c.Admission.Capacity, "Credential endpoint bucket size")
	fs.IntVar(&c.Admission.Refill, "admission-refill", c.Admission.Refill, "Tokens added every admission interval")
	fs.DurationVar(&c.Admission.Interval, "admission-interval", c.Admission.Interval, "Admission refill interval")
	fs.BoolVar(&c.AdmissionPerClient, "admission-per-client", c.AdmissionPerClient, "Keep one admission bucket per client IP")
	fs.StringVar(&c.RevocationBackend, "revocation-backend", c.RevocationBackend, "Revocation store (sqlite, memory)")
	fs.StringVarP(&c.DatabaseFile, "database", "d", c.DatabaseFile, "SQLite database file")
	fs.StringVar(&c.PepperFile, "pepper-file", c.PepperFile, "Password pepper file")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Logging format (json, text)")
	fs.StringVarP(&c.Env, "environment", "e", c.Env, "Environment (dev, staging, prod)")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "HTTP server port")

	return fs.Parse(args)
}

// Validate reports the first setting the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET is required")
	case len(c.JWTSecret) < MinSecretLength:
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	case c.AccessTTL <= 0:
		return fmt.Errorf("access token TTL must be positive, got %s", c.AccessTTL)
	case c.RefreshTTL <= 0:
		return fmt.Errorf("refresh token TTL must be positive, got %s", c.RefreshTTL)
	case c.ClockSkew < 0:
		return fmt.Errorf("clock skew must not be negative, got %s", c.ClockSkew)
	case c.IdentityCacheTTL < 0:
		return fmt.Errorf("identity cache TTL must not be negative, got %s", c.IdentityCacheTTL)
	case c.RevocationBackend != RevocationBackendSQLite && c.RevocationBackend != RevocationBackendMemory:
		return fmt.Errorf("unknown revocation backend %q", c.RevocationBackend)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return c.Admission.Validate()
}

// parseDuration accepts Go durations ("1h", "90s") and bare integers as
// seconds.
func parseDuration(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration %q", v)
}
