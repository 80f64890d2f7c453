package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var (
	cfg     *APIConfig
	loadErr error
	once    sync.Once
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	DB             DBConfig             `xml:"DB"`
	Logging        LoggingConfig        `xml:"LOGGING"`
	Lessons        LessonsConfig        `xml:"LESSONS"`
	Notify         NotifyConfig         `xml:"NOTIFY"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port        int      `xml:"PORT"`
	Host        string   `xml:"HOST"`
	CORSOrigins []string `xml:"CORS_ORIGINS>ORIGIN"`
}

// AuthenticationConfig holds authentication settings. Secrets come from the
// environment, never from the XML file.
type AuthenticationConfig struct {
	EnableTokenAuth bool `xml:"ENABLE_TOKEN_AUTH"`
	// SessionTimeout is the access token lifetime in seconds.
	SessionTimeout int    `xml:"SESSION_TIMEOUT"`
	AccessSecret   string `xml:"-"`
	RefreshSecret  string `xml:"-"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	Driver     string       `xml:"DRIVER"`
	SSLMode    string       `xml:"SSL_MODE"`
	Names      DBNames      `xml:"NAMES"`
	Username   string       `xml:"USERNAME"`
	Password   DBPassword   `xml:"PASSWORD"`
	Pool       DBPoolConfig `xml:"POOL"`
	// Path is the sqlite file used when Driver is "sqlite".
	Path string `xml:"PATH"`
}

// DBNames holds the names defined in the DB section.
type DBNames struct {
	Servewise string `xml:"SERVEWISE,attr"`
}

// DBPassword holds password details. TYPE="env" names an environment
// variable instead of carrying the password inline.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

type LoggingConfig struct {
	Level      string `xml:"LEVEL"`
	Dir        string `xml:"DIR"`
	MaxSizeMB  int    `xml:"MAX_SIZE_MB"`
	MaxBackups int    `xml:"MAX_BACKUPS"`
	MaxAgeDays int    `xml:"MAX_AGE_DAYS"`
}

// LessonsConfig tunes lesson generation.
type LessonsConfig struct {
	OptionCount           int     `xml:"OPTION_COUNT"`
	DefaultPriceVariation float64 `xml:"DEFAULT_PRICE_VARIATION"`
	// Seed fixes the random source; 0 draws a fresh one per run.
	Seed uint64 `xml:"SEED"`
	// HardDeletePolicy is "lesson" or "questions".
	HardDeletePolicy string `xml:"HARD_DELETE_POLICY"`
	FanOutWorkers    int    `xml:"FAN_OUT_WORKERS"`
}

type NotifyConfig struct {
	Enabled       bool    `xml:"ENABLED,attr"`
	FromEmail     string  `xml:"FROM_EMAIL"`
	FromName      string  `xml:"FROM_NAME"`
	BaseURL       string  `xml:"BASE_URL"`
	RatePerSecond float64 `xml:"RATE_PER_SECOND"`
	Burst         int     `xml:"BURST"`
	APIKey        string  `xml:"-"`
}

// LoadConfig loads and parses the XML configuration from the given file once.
// A .env file next to the process is loaded first so secrets can be kept out
// of the XML.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		_ = godotenv.Load()

		f, err := os.Open(xmlPath)
		if err != nil {
			loadErr = err
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			loadErr = err
			return
		}
		cfg, loadErr = Parse(data)
	})
	return cfg, loadErr
}

// Parse decodes an XML document, applies defaults and resolves secrets from
// the environment.
func Parse(data []byte) (*APIConfig, error) {
	var c APIConfig
	if err := xml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.resolveSecrets(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *APIConfig {
	return cfg
}

func (c *APIConfig) applyDefaults() {
	if c.Context.Port == 0 {
		c.Context.Port = 8080
	}
	if c.Authentication.SessionTimeout == 0 {
		c.Authentication.SessionTimeout = 900
	}
	if c.DB.Driver == "" {
		c.DB.Driver = "postgres"
	}
	if c.Lessons.OptionCount == 0 {
		c.Lessons.OptionCount = 4
	}
	if c.Lessons.DefaultPriceVariation == 0 {
		c.Lessons.DefaultPriceVariation = 15
	}
	if c.Lessons.HardDeletePolicy == "" {
		c.Lessons.HardDeletePolicy = "lesson"
	}
	if c.Lessons.FanOutWorkers == 0 {
		c.Lessons.FanOutWorkers = 4
	}
	if c.Notify.RatePerSecond == 0 {
		c.Notify.RatePerSecond = 5
	}
	if c.Notify.Burst == 0 {
		c.Notify.Burst = 1
	}
	if c.Notify.BaseURL == "" {
		c.Notify.BaseURL = "https://api.sendgrid.com"
	}
}

func (c *APIConfig) resolveSecrets() error {
	if strings.EqualFold(c.DB.Password.Type, "env") {
		name := strings.TrimSpace(c.DB.Password.Value)
		v, ok := os.LookupEnv(name)
		if !ok {
			return fmt.Errorf("config: DB password variable %s is not set", name)
		}
		c.DB.Password.Value = v
	}
	c.Authentication.AccessSecret = os.Getenv("JWT_ACCESS_SECRET")
	c.Authentication.RefreshSecret = os.Getenv("JWT_REFRESH_SECRET")
	c.Notify.APIKey = os.Getenv("SENDGRID_API_KEY")
	if seed := os.Getenv("LESSON_SEED"); seed != "" {
		n, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("config: LESSON_SEED: %w", err)
		}
		c.Lessons.Seed = n
	}
	return nil
}

func (c *APIConfig) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB driver %q", c.DB.Driver)
	}
	switch c.Lessons.HardDeletePolicy {
	case "lesson", "questions":
	default:
		return fmt.Errorf("config: unknown hard delete policy %q", c.Lessons.HardDeletePolicy)
	}
	if c.Notify.Enabled && c.Notify.APIKey == "" {
		return fmt.Errorf("config: notifications enabled without SENDGRID_API_KEY")
	}
	return nil
}

// DSN builds the connection string for the configured driver.
func (d DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		if d.Path == "" {
			return "servewise.db"
		}
		return d.Path
	}
	ssl := d.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.Username, d.Password.Value, d.Names.Servewise, ssl)
}
