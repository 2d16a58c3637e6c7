package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Server содержит настройки HTTP-сервера.
type Server struct {
	Address  string `mapstructure:"address"`
	BasePath string `mapstructure:"base_path"`
	Debug    bool   `mapstructure:"debug"`
}

// Warehouse содержит параметры подключения к аналитическому хранилищу.
type Warehouse struct {
	Driver       string        `mapstructure:"driver"`
	Account      string        `mapstructure:"account"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Warehouse    string        `mapstructure:"warehouse"`
	Database     string        `mapstructure:"database"`
	Schema       string        `mapstructure:"schema"`
	Role         string        `mapstructure:"role"`
	DSN          string        `mapstructure:"dsn"`
	ColumnCase   string        `mapstructure:"column_case"`
	LoginTimeout time.Duration `mapstructure:"login_timeout"`
}

// DB содержит параметры подключения к БД записей.
type DB struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

// Storage описывает настройки хранилища выгрузок.
type Storage struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"basepath"`
	S3       S3     `mapstructure:"s3"`
}

// S3 содержит настройки для S3-совместимого хранилища.
type S3 struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Export содержит настройки выгрузки результатов запросов.
type Export struct {
	Prefix string `mapstructure:"prefix"`
}

// Logging содержит настройки логирования.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Metrics содержит настройки Prometheus.
type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config объединяет все разделы конфигурации.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Warehouse Warehouse `mapstructure:"warehouse"`
	DB        DB        `mapstructure:"database"`
	Storage   Storage   `mapstructure:"storage"`
	Export    Export    `mapstructure:"export"`
	Logging   Logging   `mapstructure:"logging"`
	Metrics   Metrics   `mapstructure:"metrics"`
}

var (
	warehouseDrivers = []string{"snowflake", "postgres", "sqlite3"}
	databaseDrivers  = []string{"postgres", "sqlite"}
	columnCases      = []string{"lower", "upper", "preserve"}
	validLogLevels   = []string{"debug", "info", "warn", "error", "fatal", "panic"}
)

// Load читает конфигурацию из файла, .env и окружения с помощью viper.
// Пустой path означает поиск config.yaml в стандартных каталогах.
func Load(path string) (Config, error) {
	// .env опционален, уже выставленные переменные окружения не перезаписываются
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/snowflake-data")
	}

	// Настройка для environment variables
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	if err := bindEnvironmentVariables(v); err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		// Если файл конфигурации не найден, продолжаем с environment variables и defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.debug", false)

	v.SetDefault("warehouse.driver", "snowflake")
	v.SetDefault("warehouse.column_case", "lower")
	v.SetDefault("warehouse.login_timeout", 60*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "snowflake_data.db")
	v.SetDefault("database.debug", false)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.basepath", "./exports")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "snowflake-data-exports")

	v.SetDefault("export.prefix", "exports")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// bindEnvironmentVariables привязывает переменные окружения к конфигурации.
// Параметры Snowflake также читаются из исходных имён SNOWFLAKE_*.
func bindEnvironmentVariables(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.address":          {"APP_SERVER_ADDRESS"},
		"server.base_path":        {"APP_SERVER_BASE_PATH"},
		"server.debug":            {"APP_SERVER_DEBUG"},
		"warehouse.driver":        {"APP_WAREHOUSE_DRIVER"},
		"warehouse.account":       {"APP_WAREHOUSE_ACCOUNT", "SNOWFLAKE_ACCOUNT"},
		"warehouse.user":          {"APP_WAREHOUSE_USER", "SNOWFLAKE_USER"},
		"warehouse.password":      {"APP_WAREHOUSE_PASSWORD", "SNOWFLAKE_PASSWORD"},
		"warehouse.warehouse":     {"APP_WAREHOUSE_WAREHOUSE", "SNOWFLAKE_WAREHOUSE"},
		"warehouse.database":      {"APP_WAREHOUSE_DATABASE", "SNOWFLAKE_DATABASE"},
		"warehouse.schema":        {"APP_WAREHOUSE_SCHEMA", "SNOWFLAKE_SCHEMA"},
		"warehouse.role":          {"APP_WAREHOUSE_ROLE", "SNOWFLAKE_ROLE"},
		"warehouse.dsn":           {"APP_WAREHOUSE_DSN"},
		"warehouse.column_case":   {"APP_WAREHOUSE_COLUMN_CASE"},
		"warehouse.login_timeout": {"APP_WAREHOUSE_LOGIN_TIMEOUT"},
		"database.driver":         {"APP_DATABASE_DRIVER"},
		"database.dsn":            {"APP_DATABASE_DSN"},
		"database.debug":          {"APP_DATABASE_DEBUG"},
		"storage.type":            {"APP_STORAGE_TYPE"},
		"storage.basepath":        {"APP_STORAGE_BASEPATH"},
		"storage.s3.region":       {"APP_STORAGE_S3_REGION"},
		"storage.s3.bucket":       {"APP_STORAGE_S3_BUCKET"},
		"storage.s3.endpoint":     {"APP_STORAGE_S3_ENDPOINT"},
		"storage.s3.access_key":   {"APP_STORAGE_S3_ACCESS_KEY"},
		"storage.s3.secret_key":   {"APP_STORAGE_S3_SECRET_KEY"},
		"export.prefix":           {"APP_EXPORT_PREFIX"},
		"logging.level":           {"APP_LOGGING_LEVEL"},
		"logging.format":          {"APP_LOGGING_FORMAT"},
		"metrics.enabled":         {"APP_METRICS_ENABLED"},
		"metrics.path":            {"APP_METRICS_PATH"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// validateConfig проверяет корректность конфигурации
func validateConfig(cfg Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if cfg.Server.BasePath != "" && !strings.HasPrefix(cfg.Server.BasePath, "/") {
		return fmt.Errorf("server base_path must start with '/', got: %s", cfg.Server.BasePath)
	}

	// Проверка настроек хранилища данных
	if !oneOf(cfg.Warehouse.Driver, warehouseDrivers) {
		return fmt.Errorf("warehouse driver must be one of %v, got: %s", warehouseDrivers, cfg.Warehouse.Driver)
	}
	if cfg.Warehouse.Driver == "snowflake" && cfg.Warehouse.DSN == "" {
		if cfg.Warehouse.Account == "" {
			return fmt.Errorf("warehouse account cannot be empty")
		}
		if cfg.Warehouse.User == "" {
			return fmt.Errorf("warehouse user cannot be empty")
		}
	}
	if cfg.Warehouse.Driver != "snowflake" && cfg.Warehouse.DSN == "" {
		return fmt.Errorf("warehouse DSN cannot be empty for driver %s", cfg.Warehouse.Driver)
	}
	if !oneOf(cfg.Warehouse.ColumnCase, columnCases) {
		return fmt.Errorf("warehouse column_case must be one of %v, got: %s", columnCases, cfg.Warehouse.ColumnCase)
	}

	// Проверка настроек базы данных
	if !oneOf(cfg.DB.Driver, databaseDrivers) {
		return fmt.Errorf("database driver must be one of %v, got: %s", databaseDrivers, cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("database DSN cannot be empty")
	}

	// Проверка настроек хранилища выгрузок
	if cfg.Storage.Type != "local" && cfg.Storage.Type != "s3" {
		return fmt.Errorf("storage type must be 'local' or 's3', got: %s", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "local" && cfg.Storage.BasePath == "" {
		return fmt.Errorf("storage basepath cannot be empty for local storage")
	}
	if cfg.Storage.Type == "s3" {
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region cannot be empty")
		}
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
	}

	if !oneOf(strings.ToLower(cfg.Logging.Level), validLogLevels) {
		return fmt.Errorf("invalid logging level: %s. Valid levels: %v", cfg.Logging.Level, validLogLevels)
	}

	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// IsDevelopment возвращает true, если приложение запущено в режиме разработки
func (c Config) IsDevelopment() bool {
	return c.Server.Debug
}

// String возвращает строковое представление конфигурации (без чувствительных данных)
func (c Config) String() string {
	return fmt.Sprintf("Config{Server: %+v, Warehouse: {Driver: %s, Account: %s, User: %s, Password: [HIDDEN], Warehouse: %s, Database: %s, Schema: %s, DSN: [HIDDEN]}, DB: {Driver: %s, DSN: [HIDDEN]}, Storage: {Type: %s, BasePath: %s, Bucket: %s}, Logging: %+v}",
		c.Server,
		c.Warehouse.Driver, c.Warehouse.Account, c.Warehouse.User, c.Warehouse.Warehouse, c.Warehouse.Database, c.Warehouse.Schema,
		c.DB.Driver,
		c.Storage.Type, c.Storage.BasePath, c.Storage.S3.Bucket,
		c.Logging)
}
