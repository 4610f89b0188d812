package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fyerfyer/techdoc-assistant/internal/chat"
)

func main() {
	// .env文件不存在时忽略
	_ = godotenv.Load()

	backendURL := flag.String("backend", defaultBackendURL(), "Backend server URL")
	timeout := flag.Duration("timeout", chat.DefaultTimeout, "Request timeout")
	flag.Parse()

	client := chat.NewClient(*backendURL, *timeout)

	// 启动前探测后端，失败只提示不阻止进入聊天界面
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := client.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: backend not reachable at %s: %v\n", *backendURL, err)
	}
	cancel()

	p := tea.NewProgram(chat.NewModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultBackendURL 默认后端地址，可通过BACKEND_URL环境变量覆盖
func defaultBackendURL() string {
	if url := os.Getenv("BACKEND_URL"); url != "" {
		return url
	}
	return "http://localhost:5000"
}
