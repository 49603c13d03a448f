// Package config 负责加载和管理应用程序的配置
// 使用 viper 库支持 YAML 配置文件和环境变量覆盖
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 是应用程序的根配置结构
// 包含所有子配置模块
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Redis    RedisConfig    `mapstructure:"redis"`    // Redis 配置
	JWT      JWTConfig      `mapstructure:"jwt"`      // JWT 配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	AI       AIConfig       `mapstructure:"ai"`       // 生成式回复配置
	Emotion  EmotionConfig  `mapstructure:"emotion"`  // 情绪识别配置
	Vision   VisionConfig   `mapstructure:"vision"`   // 人脸检测配置
}

// ServerConfig 服务器相关配置
type ServerConfig struct {
	Port int      `mapstructure:"port"` // 监听端口，默认 8080
	Mode string   `mapstructure:"mode"` // 运行模式: debug / release
	CORS []string `mapstructure:"cors"` // CORS 允许的域名
}

// DatabaseConfig 数据库连接配置
// Driver 支持 mysql / postgres / sqlite
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`         // 数据库驱动
	Host         string `mapstructure:"host"`           // 数据库主机地址
	Port         int    `mapstructure:"port"`           // 数据库端口
	Username     string `mapstructure:"username"`       // 数据库用户名
	Password     string `mapstructure:"password"`       // 数据库密码
	Database     string `mapstructure:"database"`       // 数据库名称（sqlite 下为文件路径）
	Charset      string `mapstructure:"charset"`        // 字符集（仅 mysql）
	SSLMode      string `mapstructure:"sslmode"`        // SSL 模式（仅 postgres）
	DSN          string `mapstructure:"dsn"`            // 直接指定 DSN，优先于上面的字段
	MaxIdleConns int    `mapstructure:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int    `mapstructure:"max_open_conns"` // 最大打开连接数
	MaxLifetime  int    `mapstructure:"max_lifetime"`   // 连接最大生命周期（秒）
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`   // 是否启用 Redis
	Host     string `mapstructure:"host"`      // Redis 主机地址
	Port     int    `mapstructure:"port"`      // Redis 端口
	Username string `mapstructure:"username"`  // Redis 用户名
	Password string `mapstructure:"password"`  // Redis 密码
	DB       int    `mapstructure:"db"`        // 数据库索引 (0-15)
	PoolSize int    `mapstructure:"pool_size"` // 连接池大小
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`         // JWT 签名密钥，至少32字符
	AccessExpire  time.Duration `mapstructure:"access_expire"`  // Access Token 过期时间
	RefreshExpire time.Duration `mapstructure:"refresh_expire"` // Refresh Token 过期时间
}

// LogConfig 日志配置
type LogConfig struct {
	Mode string `mapstructure:"mode"` // development / production
}

// AIConfig 生成式回复配置
// Provider 为空时使用关键词回退回复
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`      // ark / qwen / 空
	Model       string        `mapstructure:"model"`         // 模型名称
	ArkAPIKey   string        `mapstructure:"ark_api_key"`   // 火山方舟 API Key
	ArkBaseURL  string        `mapstructure:"ark_base_url"`  // 火山方舟地址
	ArkRegion   string        `mapstructure:"ark_region"`    // 火山方舟区域
	QwenAPIKey  string        `mapstructure:"qwen_api_key"`  // Qwen API Key
	QwenBaseURL string        `mapstructure:"qwen_base_url"` // DashScope 地址
	Timeout     time.Duration `mapstructure:"timeout"`       // 单次生成超时
}

// EmotionConfig 情绪识别配置
type EmotionConfig struct {
	HFAPIToken       string        `mapstructure:"hf_api_token"`       // Hugging Face Inference Token
	TextEndpoint     string        `mapstructure:"text_endpoint"`      // 文本情绪模型地址
	ImageEndpoint    string        `mapstructure:"image_endpoint"`     // 表情识别模型地址
	TextMinScore     float64       `mapstructure:"text_min_score"`     // 文本情绪最低分数
	FacePadding      int           `mapstructure:"face_padding"`       // 人脸裁剪外扩像素
	RecencyWindow    time.Duration `mapstructure:"recency_window"`     // 图像情绪有效窗口
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`    // 推理请求超时
	AnalyzePerMinute int           `mapstructure:"analyze_per_minute"` // 每用户每分钟图像分析次数，0 表示不限制
}

// VisionConfig Google Cloud Vision 配置
type VisionConfig struct {
	Enabled         bool   `mapstructure:"enabled"`          // 是否启用人脸检测
	CredentialsFile string `mapstructure:"credentials_file"` // 凭证文件或 JSON 内容
}

// Enabled 表示是否配置了可用的生成服务
func (c AIConfig) Enabled() bool {
	switch strings.ToLower(c.Provider) {
	case "ark":
		return c.ArkAPIKey != "" && c.Model != ""
	case "qwen":
		return c.QwenAPIKey != ""
	default:
		return false
	}
}

// Load 从指定路径加载配置文件
// 支持环境变量覆盖配置项
// 参数:
//   - configPath: 配置文件目录路径 (如 "./configs")
//
// 返回:
//   - *Config: 配置对象
//   - error: 如果加载失败则返回错误
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// 将环境变量中的 _ 映射到配置的 .
	// 例如: DATABASE_HOST -> database.host
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)
	setDefaults(v)

	// 配置文件不存在时继续使用默认值和环境变量
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in release mode")
	}
	if c.Emotion.TextMinScore < 0 || c.Emotion.TextMinScore >= 1 {
		return fmt.Errorf("invalid emotion.text_min_score %v", c.Emotion.TextMinScore)
	}
	return nil
}

// bindEnvVariables 绑定环境变量到配置项
func bindEnvVariables(v *viper.Viper) {
	// 服务器配置
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// 数据库配置
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.username", "DATABASE_USERNAME")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.database", "DATABASE_NAME")

	// Redis 配置
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.username", "REDIS_USERNAME")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// JWT 配置
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// 日志配置
	v.BindEnv("log.mode", "LOG_MODE")

	// AI 配置
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.ark_api_key", "ARK_API_KEY")
	v.BindEnv("ai.qwen_api_key", "QWEN_API_KEY")

	// 情绪识别配置
	v.BindEnv("emotion.hf_api_token", "HF_API_TOKEN")
	v.BindEnv("emotion.text_endpoint", "EMOTION_TEXT_ENDPOINT")
	v.BindEnv("emotion.image_endpoint", "EMOTION_IMAGE_ENDPOINT")

	// Vision 配置
	v.BindEnv("vision.enabled", "VISION_ENABLED")
	v.BindEnv("vision.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
}

// setDefaults 设置配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "kindspeak.db")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_lifetime", 3600)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 100)

	v.SetDefault("jwt.secret", "dev-secret-key-change-me-in-release-mode")
	v.SetDefault("jwt.access_expire", "24h")
	v.SetDefault("jwt.refresh_expire", "168h")

	v.SetDefault("log.mode", "development")

	v.SetDefault("ai.ark_base_url", "https://ark.cn-beijing.volces.com/api/v3")
	v.SetDefault("ai.ark_region", "cn-beijing")
	v.SetDefault("ai.qwen_base_url", "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation")
	v.SetDefault("ai.timeout", "30s")

	v.SetDefault("emotion.text_endpoint", "https://api-inference.huggingface.co/models/cardiffnlp/twitter-roberta-base-emotion-multilabel-latest")
	v.SetDefault("emotion.image_endpoint", "https://api-inference.huggingface.co/models/trpakov/vit-face-expression")
	v.SetDefault("emotion.text_min_score", 0.1)
	v.SetDefault("emotion.face_padding", 20)
	v.SetDefault("emotion.recency_window", "10s")
	v.SetDefault("emotion.request_timeout", "20s")
	v.SetDefault("emotion.analyze_per_minute", 30)

	v.SetDefault("vision.enabled", false)
}
