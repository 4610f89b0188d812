package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Documents DocumentsConfig `mapstructure:"documents"`
	VectorDB  VectorDBConfig  `mapstructure:"vectordb"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embed     EmbedConfig     `mapstructure:"embed"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Search    SearchConfig    `mapstructure:"search"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"` // 服务器主机
	Port int    `mapstructure:"port"` // 服务器端口
}

// DocumentsConfig 文档加载与分块配置
type DocumentsConfig struct {
	Dir          string `mapstructure:"dir"`           // 文档目录
	ChunkSize    int    `mapstructure:"chunk_size"`    // 分块大小（rune数）
	ChunkOverlap int    `mapstructure:"chunk_overlap"` // 分块重叠大小（rune数）
}

// VectorDBConfig 向量数据库配置
type VectorDBConfig struct {
	Type     string `mapstructure:"type"`     // 向量数据库类型：memory 或 faiss
	Path     string `mapstructure:"path"`     // 索引持久化路径
	Dim      int    `mapstructure:"dim"`      // 向量维度
	Distance string `mapstructure:"distance"` // 距离度量方式：cosine, l2, dot
}

// LLMConfig 大语言模型配置
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`    // 提供商：ollama
	Model       string  `mapstructure:"model"`       // 模型名称
	Endpoint    string  `mapstructure:"endpoint"`    // API端点
	MaxTokens   int     `mapstructure:"max_tokens"`  // 最大生成token数量
	Temperature float32 `mapstructure:"temperature"` // 采样温度
}

// EmbedConfig 向量嵌入模型配置
type EmbedConfig struct {
	Provider   string `mapstructure:"provider"`   // 提供商：ollama
	Model      string `mapstructure:"model"`      // 模型名称
	Endpoint   string `mapstructure:"endpoint"`   // API端点
	BatchSize  int    `mapstructure:"batch_size"` // 批处理大小
	Dimensions int    `mapstructure:"dimensions"` // 向量维度
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// SearchConfig 搜索配置
type SearchConfig struct {
	Limit    int     `mapstructure:"limit"`     // 检索结果数量
	MinScore float32 `mapstructure:"min_score"` // 最低相似度分数
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // 日志级别
	File  string `mapstructure:"file"`  // 日志文件路径，为空时只输出到stdout
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件时全部使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	setDefaults(v)

	// 支持环境变量覆盖，如SERVER_PORT、EMBED_ENDPOINT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate 校验分块参数
func validate(cfg *Config) error {
	if cfg.Documents.ChunkSize <= 0 {
		return fmt.Errorf("documents.chunk_size must be positive, got %d", cfg.Documents.ChunkSize)
	}
	if cfg.Documents.ChunkOverlap < 0 {
		return fmt.Errorf("documents.chunk_overlap must not be negative, got %d", cfg.Documents.ChunkOverlap)
	}
	if cfg.Documents.ChunkOverlap >= cfg.Documents.ChunkSize {
		return fmt.Errorf("documents.chunk_overlap %d must be smaller than chunk_size %d",
			cfg.Documents.ChunkOverlap, cfg.Documents.ChunkSize)
	}
	if cfg.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive, got %d", cfg.Search.Limit)
	}
	return nil
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)

	// 文档默认配置
	v.SetDefault("documents.dir", "./documents")
	v.SetDefault("documents.chunk_size", 500)
	v.SetDefault("documents.chunk_overlap", 50)

	// 向量数据库默认配置
	v.SetDefault("vectordb.type", "memory")
	v.SetDefault("vectordb.path", "./data/index")
	v.SetDefault("vectordb.dim", 768) // nomic-embed-text 维度
	v.SetDefault("vectordb.distance", "cosine")

	// LLM默认配置
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.model", "llama3.2")
	v.SetDefault("llm.endpoint", "http://localhost:11434")
	v.SetDefault("llm.max_tokens", 1000)

	// Embedding默认配置
	v.SetDefault("embed.provider", "ollama")
	v.SetDefault("embed.model", "nomic-embed-text")
	v.SetDefault("embed.endpoint", "http://localhost:11434")
	v.SetDefault("embed.batch_size", 10)
	v.SetDefault("embed.dimensions", 768)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 3600) // 1小时

	// 搜索默认配置
	v.SetDefault("search.limit", 5)
	v.SetDefault("search.min_score", 0.0)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}
