package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 読み込み元の種類です。
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// DefaultPath は CONFIG_PATH が未指定の場合に参照する設定ファイルです。
const DefaultPath = "assets/local.yaml"

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// InputConfig はタスクの読み込み元に関する設定です。
type InputConfig struct {
	Source    string `yaml:"source"`
	TasksPath string `yaml:"tasks_path"`
}

// OutputConfig は集計結果の出力先に関する設定です。
type OutputConfig struct {
	SummaryPath string `yaml:"summary_path"`
	ChartDir    string `yaml:"chart_dir"`
	PDFPath     string `yaml:"pdf_path"`
	Show        bool   `yaml:"show"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// LogConfig はログ出力に関する設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	PersistReports     bool          `yaml:"persist_reports"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// Default は設定ファイルが無い場合の既定値を返します。環境変数による上書きも検証されます。
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Resolve は path、CONFIG_PATH、DefaultPath の順に設定ファイルを探します。
// 明示されたファイルが無い場合はエラー、既定のファイルが無い場合は Default を返します。
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		return Load(path)
	}

	cfg, err := Load(DefaultPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default()
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TASKREPORT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TASKREPORT_DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("TASKREPORT_PERSIST_REPORTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: TASKREPORT_PERSIST_REPORTS: %w", err)
		}
		c.Database.PersistReports = b
	}
	return nil
}

// Validate は CLI フラグなどで上書きした後の設定を再検証します。
func (c *Config) Validate() error {
	return c.validateAndNormalize()
}

func (c *Config) validateAndNormalize() error {
	in := &c.Input
	in.Source = strings.ToLower(strings.TrimSpace(in.Source))
	if in.Source == "" {
		in.Source = SourceCSV
	}
	if in.TasksPath == "" {
		in.TasksPath = "tasks.csv"
	}

	out := &c.Output
	if out.SummaryPath == "" {
		out.SummaryPath = "employee_summary.json"
	}
	if out.ChartDir == "" {
		out.ChartDir = "."
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	switch in.Source {
	case SourceCSV:
	case SourcePostgres:
	default:
		return fmt.Errorf("config: input.source must be %q or %q, got %q", SourceCSV, SourcePostgres, in.Source)
	}

	if c.DatabaseRequired() {
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	}

	return nil
}

// DatabaseRequired はデータベース接続が必要な設定かどうかを返します。
func (c *Config) DatabaseRequired() bool {
	return c.Input.Source == SourcePostgres || c.Database.PersistReports
}

// ValidateServer は gRPC サーバーの起動に必要な設定を検証します。
func (c *Config) ValidateServer() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	return nil
}

// Validate は database 設定を検証し、既定値を補完します。
func (d *DatabaseConfig) Validate() error {
	return d.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。ユーザー名とパスワードはエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
