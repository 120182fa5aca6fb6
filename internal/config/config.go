package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// 存储后端
const (
	BackendDynamo   = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

var ErrMissingGeminiKey = errors.New("未配置 GEMINI_API_KEY 或 GEMINI_KEY_FILE")

// Config 应用配置
type Config struct {
	Env      string `yaml:"env" validate:"oneof=development production test"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// 本地文件
	DataDir       string `yaml:"data_dir" validate:"required"`
	MoviesFile    string `yaml:"movies_file" validate:"required"`
	MembersFile   string `yaml:"members_file" validate:"required"`
	MetricsFile   string `yaml:"metrics_file" validate:"required"`
	CentroidsFile string `yaml:"centroids_file" validate:"required"`

	// 抓取
	MovieURLs    []string      `yaml:"movie_urls" validate:"dive,url"`
	SimpsonsURLs []string      `yaml:"simpsons_urls" validate:"dive,url"`
	CrawlDelay   time.Duration `yaml:"crawl_delay"`
	CrawlTimeout time.Duration `yaml:"crawl_timeout"`

	// 远端存储
	StoreBackend    string `yaml:"store_backend" validate:"oneof=dynamodb postgres memory"`
	MoviesTable     string `yaml:"movies_table" validate:"required"`
	MembersTable    string `yaml:"members_table" validate:"required"`
	MembersTableKey string `yaml:"members_table_key" validate:"required"`
	CentroidsTable  string `yaml:"centroids_table" validate:"required"`
	AWSRegion       string `yaml:"aws_region"`
	DynamoEndpoint  string `yaml:"dynamodb_endpoint"`
	AWSAccessKey    string `yaml:"aws_access_key_id"`
	AWSSecretKey    string `yaml:"aws_secret_access_key"`
	DatabaseURL     string `yaml:"database_url"`

	// 生成服务
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiKeyFile   string `yaml:"gemini_key_file"`
	GeminiModel     string `yaml:"gemini_model" validate:"required"`
	GeminiCacheSize int    `yaml:"gemini_cache_size" validate:"gte=0"`

	// ID 生成
	IDPolicy string `yaml:"id_policy" validate:"oneof=random content"`
	IDLength int    `yaml:"id_length" validate:"gte=1,lte=64"`

	// 聚类
	Clusters        int    `yaml:"clusters" validate:"gte=1"`
	ClusterSeed     uint64 `yaml:"cluster_seed"`
	ClusterInitRuns int    `yaml:"cluster_init_runs" validate:"gte=1"`

	// 节流
	RatePolicy      string        `yaml:"rate_policy" validate:"oneof=fixed bucket"`
	RateBurst       int           `yaml:"rate_burst" validate:"gte=1"`
	MetricsInterval time.Duration `yaml:"metrics_interval"`
	TriviaInterval  time.Duration `yaml:"trivia_interval"`
	TriviaStrategy  string        `yaml:"trivia_strategy" validate:"oneof=regex marker"`
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "bluckboster")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	return &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataDir:       getEnv("DATA_DIR", "."),
		MoviesFile:    getEnv("MOVIES_FILE", "movies.json"),
		MembersFile:   getEnv("MEMBERS_FILE", "simpsons.json"),
		MetricsFile:   getEnv("METRICS_FILE", "metrics.json"),
		CentroidsFile: getEnv("CENTROIDS_FILE", "centroids.json"),

		MovieURLs:    getEnvList("MOVIE_URLS"),
		SimpsonsURLs: getEnvList("SIMPSONS_URLS"),
		CrawlDelay:   getEnvDuration("CRAWL_DELAY", 0),
		CrawlTimeout: getEnvDuration("CRAWL_TIMEOUT", 30*time.Second),

		StoreBackend:    getEnv("STORE_BACKEND", BackendDynamo),
		MoviesTable:     getEnv("MOVIES_TABLE", "BluckBoster_movies"),
		MembersTable:    getEnv("MEMBERS_TABLE", "BluckBoster_members"),
		MembersTableKey: getEnv("MEMBERS_TABLE_KEY", "username"),
		CentroidsTable:  getEnv("CENTROIDS_TABLE", "BluckBoster_centroids"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		DynamoEndpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
		AWSAccessKey:    getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DatabaseURL:     getEnv("DATABASE_URL", dbURL),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiKeyFile:   getEnv("GEMINI_KEY_FILE", ".env.gemini"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiCacheSize: getEnvInt("GEMINI_CACHE_SIZE", 256),

		IDPolicy: getEnv("ID_POLICY", "random"),
		IDLength: getEnvInt("ID_LENGTH", 7),

		Clusters:        getEnvInt("CLUSTERS", 20),
		ClusterSeed:     uint64(getEnvInt("CLUSTER_SEED", 0)),
		ClusterInitRuns: getEnvInt("CLUSTER_INIT_RUNS", 10),

		RatePolicy:      getEnv("RATE_POLICY", "fixed"),
		RateBurst:       getEnvInt("RATE_BURST", 1),
		MetricsInterval: getEnvDuration("METRICS_INTERVAL", 10*time.Second),
		TriviaInterval:  getEnvDuration("TRIVIA_INTERVAL", 3*time.Second),
		TriviaStrategy:  getEnv("TRIVIA_STRATEGY", "regex"),
	}
}

// ApplyFile 用 YAML 文件覆盖已加载的配置，文件中未出现的键保持不变
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 允许在 YAML 中引用环境变量，如 ${GEMINI_API_KEY}
	c.GeminiAPIKey = os.ExpandEnv(c.GeminiAPIKey)
	c.DatabaseURL = os.ExpandEnv(c.DatabaseURL)
	c.AWSAccessKey = os.ExpandEnv(c.AWSAccessKey)
	c.AWSSecretKey = os.ExpandEnv(c.AWSSecretKey)
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}
	return nil
}

// Path 返回数据文件的完整路径，绝对路径原样返回
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// GeminiKey 优先使用环境变量，否则读取密钥文件（去除首尾空白）
func (c *Config) GeminiKey() (string, error) {
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey, nil
	}
	if c.GeminiKeyFile == "" {
		return "", ErrMissingGeminiKey
	}
	data, err := os.ReadFile(c.GeminiKeyFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s 不存在", ErrMissingGeminiKey, c.GeminiKeyFile)
		}
		return "", fmt.Errorf("读取密钥文件失败: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%w: %s 为空", ErrMissingGeminiKey, c.GeminiKeyFile)
	}
	return key, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration 支持 "10s" 这类写法，纯数字按秒处理
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

// getEnvList 逗号分隔的列表
func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
