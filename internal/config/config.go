package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for ttr, stored in ~/.ttr/config.yaml.
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Server   ServerConfig   `yaml:"server"`
	Mail     MailConfig     `yaml:"mail"`
	Report   ReportConfig   `yaml:"report"`
	Outlook  OutlookConfig  `yaml:"outlook"`
	Log      LogConfig      `yaml:"log"`
	PDF      PDFConfig      `yaml:"pdf"`
}

// EndpointConfig tells the client where to send reports.
type EndpointConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures `ttr serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// MailConfig selects and configures the mail transport used by the server.
type MailConfig struct {
	// Transport is "smtp" or "graph".
	Transport    string     `yaml:"transport"`
	FromName     string     `yaml:"from_name"`
	From         string     `yaml:"from"`
	HRRecipients []string   `yaml:"hr_recipients"`
	SMTP         SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ReportConfig holds report branding and defaults.
type ReportConfig struct {
	Company       string `yaml:"company"`
	System        string `yaml:"system"`
	DefaultFormat string `yaml:"default_format"`
}

// OutlookConfig holds Microsoft Graph settings for calendar import and the
// graph mail transport.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `yaml:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `yaml:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `yaml:"timezone"`
}

// LogConfig configures the zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// PDFConfig configures the headless browser used for PDF rendering.
type PDFConfig struct {
	ChromePath string        `yaml:"chrome_path"`
	NoSandbox  bool          `yaml:"no_sandbox"`
	Timeout    time.Duration `yaml:"timeout"`
}

const (
	DefaultEndpoint  = "http://localhost:8080/generate-report"
	DefaultTimeout   = 60 * time.Second
	DefaultAddr      = ":8080"
	DefaultTransport = "smtp"
	DefaultFromName  = "Sense Time Tracker"
	DefaultHREmail   = "hr@company.com"
	DefaultSMTPHost  = "smtp.gmail.com"
	DefaultSMTPPort  = 587
	DefaultCompany   = "Sense Projects Pvt Ltd"
	DefaultSystem    = "Sense Time Tracker System"
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	DefaultLogLevel = "info"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		Endpoint: EndpointConfig{URL: DefaultEndpoint, Timeout: DefaultTimeout},
		Server:   ServerConfig{Addr: DefaultAddr},
		Mail: MailConfig{
			Transport:    DefaultTransport,
			FromName:     DefaultFromName,
			HRRecipients: []string{DefaultHREmail},
			SMTP:         SMTPConfig{Host: DefaultSMTPHost, Port: DefaultSMTPPort},
		},
		Report:  ReportConfig{Company: DefaultCompany, System: DefaultSystem},
		Outlook: OutlookConfig{TenantID: DefaultTenantID, ClientID: DefaultClientID},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# ttr configuration – ~/.ttr/config.yaml
#
# All settings are optional; the built-in defaults are shown below.
# Secrets can also be passed through the environment:
#   MAIL_USER, MAIL_PASS, HR_EMAIL, SMTP_HOST, SMTP_PORT, TTR_ENDPOINT

# Where 'ttr track' and 'ttr send' post reports.
endpoint:
  url: http://localhost:8080/generate-report
  timeout: 60s

# Listen address of 'ttr serve'.
server:
  addr: ":8080"

mail:
  # "smtp" or "graph" (sends through the signed-in Outlook mailbox).
  transport: smtp
  from_name: Sense Time Tracker
  # Sender address; defaults to the SMTP username.
  from: ""
  # Every report goes to these addresses.
  hr_recipients:
    - hr@company.com
  smtp:
    host: smtp.gmail.com
    port: 587
    username: ""
    password: ""

report:
  company: Sense Projects Pvt Ltd
  system: Sense Time Tracker System
  # "", "html" or "pdf"
  default_format: ""

# Microsoft Graph settings for 'ttr track --outlook' and the graph transport.
outlook:
  tenant_id: common
  client_id: 04b07795-8542-4c4a-95af-30b2c573d5ab
  # IANA timezone of calendar events, e.g. Europe/Berlin. Empty = UTC.
  timezone: ""

pdf:
  # Chrome/Chromium binary; empty lets ttr search the usual locations.
  chrome_path: ""
  no_sandbox: false
  timeout: 30s

log:
  level: info
  pretty: false
`

// BaseDir returns the ttr data directory (~/.ttr), honouring TTR_HOME.
func BaseDir() (string, error) {
	if dir := os.Getenv("TTR_HOME"); dir != "" {
		return strings.TrimRight(dir, "/"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ttr"), nil
}

// Load reads ~/.ttr/config.yaml, creating it with annotated defaults on first run.
func Load() (Config, error) {
	base, err := BaseDir()
	if err != nil {
		return applyEnv(Default(), os.Getenv), err
	}
	return LoadFile(filepath.Join(base, "config.yaml"), os.Getenv)
}

// LoadFile reads the config at path and applies environment overrides
// looked up through getenv.
func LoadFile(path string, getenv func(string) string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return applyEnv(Default(), getenv), nil
	}
	if err != nil {
		return applyEnv(Default(), getenv), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return applyEnv(Default(), getenv), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return applyEnv(cfg, getenv), nil
}

// Parse decodes YAML on top of the defaults, so fields left out keep their
// built-in values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	fillDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// fillDefaults restores defaults for values explicitly set to empty.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Endpoint.URL == "" {
		cfg.Endpoint.URL = def.Endpoint.URL
	}
	if cfg.Endpoint.Timeout <= 0 {
		cfg.Endpoint.Timeout = def.Endpoint.Timeout
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Mail.Transport == "" {
		cfg.Mail.Transport = def.Mail.Transport
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = def.Mail.FromName
	}
	if len(cfg.Mail.HRRecipients) == 0 {
		cfg.Mail.HRRecipients = def.Mail.HRRecipients
	}
	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = def.Mail.SMTP.Port
	}
	if cfg.Report.Company == "" {
		cfg.Report.Company = def.Report.Company
	}
	if cfg.Report.System == "" {
		cfg.Report.System = def.Report.System
	}
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = def.Outlook.TenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = def.Outlook.ClientID
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Mail.Transport {
	case "smtp", "graph":
	default:
		return fmt.Errorf("mail.transport must be \"smtp\" or \"graph\", got %q", c.Mail.Transport)
	}
	switch c.Report.DefaultFormat {
	case "", "html", "pdf":
	default:
		return fmt.Errorf("report.default_format must be empty, \"html\" or \"pdf\", got %q", c.Report.DefaultFormat)
	}
	return nil
}

// applyEnv overlays mail credentials and endpoint settings from the
// environment.
func applyEnv(cfg Config, getenv func(string) string) Config {
	if v := getenv("MAIL_USER"); v != "" {
		cfg.Mail.SMTP.Username = v
	}
	if v := getenv("MAIL_PASS"); v != "" {
		cfg.Mail.SMTP.Password = v
	}
	if v := getenv("HR_EMAIL"); v != "" {
		var rcpts []string
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				rcpts = append(rcpts, r)
			}
		}
		if len(rcpts) > 0 {
			cfg.Mail.HRRecipients = rcpts
		}
	}
	if v := getenv("SMTP_HOST"); v != "" {
		cfg.Mail.SMTP.Host = v
	}
	if v := getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Mail.SMTP.Port = p
		}
	}
	if v := getenv("TTR_ENDPOINT"); v != "" {
		cfg.Endpoint.URL = v
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.SMTP.Username
	}
	return cfg
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
