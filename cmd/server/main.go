package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/techdoc-assistant/api"
	"github.com/fyerfyer/techdoc-assistant/api/handler"
	"github.com/fyerfyer/techdoc-assistant/api/middleware"
	appconfig "github.com/fyerfyer/techdoc-assistant/config"
	"github.com/fyerfyer/techdoc-assistant/internal/cache"
	"github.com/fyerfyer/techdoc-assistant/internal/document"
	"github.com/fyerfyer/techdoc-assistant/internal/embedding"
	"github.com/fyerfyer/techdoc-assistant/internal/llm"
	"github.com/fyerfyer/techdoc-assistant/internal/services"
	"github.com/fyerfyer/techdoc-assistant/internal/vectordb"
)

func main() {
	// .env文件不存在时忽略
	_ = godotenv.Load()

	configFile := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Server port (overrides config file)")
	docsDir := flag.String("docs", "", "Documents directory (overrides config file)")
	mode := flag.String("mode", "release", "Run mode (debug/release)")
	flag.Parse()

	cfg, err := appconfig.Load(*configFile)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *docsDir != "" {
		cfg.Documents.Dir = *docsDir
	}

	gin.SetMode(*mode)

	middleware.ConfigureLogger(cfg.Log.Level, cfg.Log.File)
	logger := middleware.GetLogger()
	logger.Info("Starting techdoc assistant server...")

	// 启动时先销毁旧索引，删除失败直接终止
	if err := services.ClearIndexStorage(cfg.VectorDB.Path); err != nil {
		logger.Fatalf("Failed to clear index storage: %v", err)
	}

	vectorDB, err := setupVectorDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize vector database: %v", err)
	}
	defer vectorDB.Close()

	embeddingClient, err := setupEmbedding(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize embedding client: %v", err)
	}

	llmClient, err := setupLLM(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize LLM client: %v", err)
	}

	cacheService, err := setupCache(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	splitter, err := document.NewTextSplitter(document.SplitterConfig{
		ChunkSize:    cfg.Documents.ChunkSize,
		ChunkOverlap: cfg.Documents.ChunkOverlap,
	})
	if err != nil {
		logger.Fatalf("Invalid splitter config: %v", err)
	}

	loader := document.NewLoader(cfg.Documents.Dir, logger)
	processor := embedding.NewBatchProcessor(embeddingClient, cfg.Embed.BatchSize, 4)

	// 构建向量索引，文档目录为空视为致命错误
	indexService := services.NewIndexService(loader, splitter, processor, vectorDB, logger)
	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Minute)
	if err := indexService.Build(buildCtx); err != nil {
		buildCancel()
		logger.Fatalf("Failed to build vector index: %v", err)
	}
	buildCancel()

	ragService := llm.NewRAG(llmClient,
		llm.WithRAGMaxTokens(cfg.LLM.MaxTokens),
		llm.WithRAGTemperature(cfg.LLM.Temperature),
	)

	qaOptions := []services.QAOption{
		services.WithSearchLimit(cfg.Search.Limit),
		services.WithMinScore(cfg.Search.MinScore),
	}
	if cacheService != nil {
		qaOptions = append(qaOptions,
			services.WithCache(cacheService),
			services.WithCacheTTL(time.Duration(cfg.Cache.TTL)*time.Second),
		)
	}
	qaService := services.NewQAService(embeddingClient, vectorDB, ragService, qaOptions...)

	askHandler := handler.NewAskHandler(qaService)
	r := api.SetupRouter(askHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // 生成长答案时响应较慢
	}

	go func() {
		logger.Infof("Server is running on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupVectorDB 设置向量数据库
func setupVectorDB(cfg *appconfig.Config) (vectordb.Repository, error) {
	repo, err := vectordb.NewRepository(vectordb.Config{
		Type:         cfg.VectorDB.Type,
		Path:         cfg.VectorDB.Path,
		Dimension:    cfg.VectorDB.Dim,
		DistanceType: vectordb.DistanceType(cfg.VectorDB.Distance),
	})
	if err != nil {
		// 初始化失败时回退到内存实现
		logrus.Warnf("Failed to initialize %s vector database: %v, falling back to memory", cfg.VectorDB.Type, err)
		return vectordb.NewRepository(vectordb.Config{
			Type:         "memory",
			Dimension:    cfg.VectorDB.Dim,
			DistanceType: vectordb.DistanceType(cfg.VectorDB.Distance),
		})
	}
	return repo, nil
}

// setupEmbedding 设置嵌入模型客户端
func setupEmbedding(cfg *appconfig.Config) (embedding.Client, error) {
	return embedding.NewClient(cfg.Embed.Provider,
		embedding.WithBaseURL(cfg.Embed.Endpoint),
		embedding.WithModel(cfg.Embed.Model),
		embedding.WithDimensions(cfg.Embed.Dimensions),
		embedding.WithBatchSize(cfg.Embed.BatchSize),
	)
}

// setupLLM 设置大语言模型客户端
func setupLLM(cfg *appconfig.Config) (llm.Client, error) {
	return llm.NewClient(cfg.LLM.Provider,
		llm.WithBaseURL(cfg.LLM.Endpoint),
		llm.WithModel(cfg.LLM.Model),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
		llm.WithTemperature(cfg.LLM.Temperature),
	)
}

// setupCache 设置缓存服务
func setupCache(cfg *appconfig.Config) (cache.Cache, error) {
	if !cfg.Cache.Enable {
		return nil, nil
	}

	cacheConfig := cache.Config{
		Type:       cfg.Cache.Type,
		DefaultTTL: time.Duration(cfg.Cache.TTL) * time.Second,
	}
	if cfg.Cache.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Cache.Address
		cacheConfig.RedisPassword = cfg.Cache.Password
		cacheConfig.RedisDB = cfg.Cache.DB
	}

	return cache.NewCache(cacheConfig)
}
