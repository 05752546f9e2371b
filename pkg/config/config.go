// Package config 提供 TOML 配置加载、环境变量覆盖与 schema 校验
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 服务配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`
	// 数据库配置
	Database DatabaseConfig `mapstructure:"database"`
	// Redis 配置
	Redis RedisConfig `mapstructure:"redis"`
	// Kafka 配置
	Kafka KafkaConfig `mapstructure:"kafka"`
	// 日志配置
	Logger LoggerConfig `mapstructure:"logger"`
	// 指标配置
	Metrics MetricsConfig `mapstructure:"metrics"`
	// WooCommerce 后端配置
	WooCommerce WooCommerceConfig `mapstructure:"woocommerce"`
	// 银行支付网关配置
	Gateway GatewayConfig `mapstructure:"gateway"`
	// 运费策略配置
	Shipping ShippingConfig `mapstructure:"shipping"`
	// 多语言配置
	Locale LocaleConfig `mapstructure:"locale"`
	// 缓存主动失效配置
	Revalidate RevalidateConfig `mapstructure:"revalidate"`
	// 滞留订单对账配置
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	// 监听地址
	Host string `mapstructure:"host" default:"0.0.0.0"`
	// 监听端口
	Port int `mapstructure:"port" default:"8080"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout" default:"30"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout" default:"30"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 驱动：目前仅 mysql
	Driver string `mapstructure:"driver" default:"mysql"`
	// 数据源名称
	DSN string `mapstructure:"dsn"`
	// 最大连接数
	MaxOpenConns int `mapstructure:"max_open_conns" default:"25"`
	// 最大空闲连接数
	MaxIdleConns int `mapstructure:"max_idle_conns" default:"5"`
	// 连接最大生命周期（秒）
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime" default:"300"`
	// 是否启用 SQL 日志
	LogEnabled bool `mapstructure:"log_enabled" default:"false"`
	// 慢查询阈值（毫秒）
	SlowQueryThreshold int `mapstructure:"slow_query_threshold" default:"1000"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 主机地址
	Host string `mapstructure:"host" default:"localhost"`
	// 端口
	Port int `mapstructure:"port" default:"6379"`
	// 密码
	Password string `mapstructure:"password"`
	// 数据库编号
	DB int `mapstructure:"db" default:"0"`
	// 最大连接数
	MaxPoolSize int `mapstructure:"max_pool_size" default:"10"`
	// 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout" default:"3"`
	// 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout" default:"3"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	// Broker 地址列表
	Brokers []string `mapstructure:"brokers"`
	// Consumer Group ID
	GroupID string `mapstructure:"group_id"`
	// 发送最大重试次数
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// 重试退避（毫秒）
	RetryBackoff int `mapstructure:"retry_backoff" default:"100"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	// 日志级别
	Level string `mapstructure:"level" default:"info"`
	// 输出格式
	Format string `mapstructure:"format" default:"json"`
	// 输出目标
	Output string `mapstructure:"output" default:"stdout"`
	// 文件路径
	FilePath string `mapstructure:"file_path" default:"logs/storefront.log"`
	// 最大文件大小（MB）
	MaxSize int `mapstructure:"max_size" default:"100"`
	// 最大备份文件数
	MaxBackups int `mapstructure:"max_backups" default:"10"`
	// 最大保留天数
	MaxAge int `mapstructure:"max_age" default:"30"`
	// 是否压缩
	Compress bool `mapstructure:"compress" default:"true"`
	// 是否输出调用者信息
	WithCaller bool `mapstructure:"with_caller" default:"true"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Prometheus 监听端口
	Port int `mapstructure:"port" default:"9090"`
	// 指标路径
	Path string `mapstructure:"path" default:"/metrics"`
}

// WooCommerceConfig WooCommerce 后端配置
type WooCommerceConfig struct {
	// REST API 基础地址
	RESTBaseURL string `mapstructure:"rest_base_url"`
	// GraphQL 端点
	GraphQLURL string `mapstructure:"graphql_url"`
	// REST Basic Auth 消费者密钥
	ConsumerKey string `mapstructure:"consumer_key"`
	// REST Basic Auth 消费者密钥 Secret
	ConsumerSecret string `mapstructure:"consumer_secret"`
	// 请求超时（秒）
	Timeout int `mapstructure:"timeout" default:"15"`
	// 读路径最大重试次数
	MaxRetries int `mapstructure:"max_retries" default:"2"`
}

// GatewayConfig 银行支付网关配置
type GatewayConfig struct {
	// OAuth token 端点
	TokenURL string `mapstructure:"token_url"`
	// 下单端点
	OrderURL string `mapstructure:"order_url"`
	// OAuth 客户端 ID
	ClientID string `mapstructure:"client_id"`
	// OAuth 客户端密钥
	ClientSecret string `mapstructure:"client_secret"`
	// 支付完成后的返回地址
	ReturnURL string `mapstructure:"return_url"`
	// Webhook 回调签名密钥（为空时不校验签名）
	WebhookSecret string `mapstructure:"webhook_secret"`
	// 请求超时（秒）
	Timeout int `mapstructure:"timeout" default:"20"`
	// 货币代码
	Currency string `mapstructure:"currency" default:"AMD"`
}

// ShippingConfig 运费策略配置
type ShippingConfig struct {
	// 免运费的毛小计阈值
	FreeThreshold string `mapstructure:"free_threshold" default:"200"`
	// 首都区固定运费
	CapitalFee string `mapstructure:"capital_fee" default:"5"`
	// 其他地区固定运费
	OtherFee string `mapstructure:"other_fee" default:"10"`
	// 首都城市的各语言拼写（用于分区判断）
	CapitalNames []string `mapstructure:"capital_names"`
}

// LocaleConfig 多语言配置
type LocaleConfig struct {
	// 默认语言（路径无前缀）
	Default string `mapstructure:"default" default:"hy"`
	// 支持的语言列表
	Supported []string `mapstructure:"supported"`
	// 语言 cookie 名称
	CookieName string `mapstructure:"cookie_name" default:"storefront_locale"`
}

// RevalidateConfig 缓存主动失效配置
type RevalidateConfig struct {
	// 共享密钥（query 参数校验）
	Secret string `mapstructure:"secret"`
}

// ReconcileConfig 滞留订单对账配置
type ReconcileConfig struct {
	// 是否启用
	Enabled bool `mapstructure:"enabled" default:"true"`
	// 扫描间隔（秒）
	Interval int `mapstructure:"interval" default:"900"`
	// pending 订单滞留多久视为异常（秒）
	StaleAfter int `mapstructure:"stale_after" default:"3600"`
}

// Load 从 TOML 文件加载配置，支持环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 环境变量覆盖（使用 _ 替代 .）
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if c.WooCommerce.RESTBaseURL == "" || c.WooCommerce.GraphQLURL == "" {
		return fmt.Errorf("woocommerce rest_base_url and graphql_url are required")
	}
	if len(c.Locale.Supported) == 0 {
		c.Locale.Supported = []string{c.Locale.Default}
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/storefront.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("woocommerce.timeout", 15)
	v.SetDefault("woocommerce.max_retries", 2)

	v.SetDefault("gateway.timeout", 20)
	v.SetDefault("gateway.currency", "AMD")

	v.SetDefault("shipping.free_threshold", "200")
	v.SetDefault("shipping.capital_fee", "5")
	v.SetDefault("shipping.other_fee", "10")

	v.SetDefault("locale.default", "hy")
	v.SetDefault("locale.supported", []string{"hy", "ru", "en"})
	v.SetDefault("locale.cookie_name", "storefront_locale")

	v.SetDefault("reconcile.enabled", true)
	v.SetDefault("reconcile.interval", 900)
	v.SetDefault("reconcile.stale_after", 3600)
}

// GetEnv 获取环境变量，支持默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
