package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Loader 文档目录加载器
// 遍历目录中受支持的文档文件，解析为文本记录
type Loader struct {
	dir    string
	logger *logrus.Logger
}

// NewLoader 创建新的文档加载器
func NewLoader(dir string, logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Loader{
		dir:    dir,
		logger: logger,
	}
}

// Load 加载目录中的所有文档记录
// 目录不存在时自动创建并返回空结果；单个文件解析失败只记录警告并跳过
func (l *Loader) Load() ([]Record, error) {
	if _, err := os.Stat(l.dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create documents directory %s: %v", l.dir, err)
		}
		l.logger.WithField("dir", l.dir).Warn("documents directory did not exist, created empty")
		return []Record{}, nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory %s: %v", l.dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if detectContentType(name) == Unknown {
			continue
		}

		record, err := l.loadFile(name)
		if err != nil {
			l.logger.WithFields(logrus.Fields{
				"file":  name,
				"error": err.Error(),
			}).Warn("failed to load document, skipping")
			continue
		}

		records = append(records, record)
	}

	l.logger.WithFields(logrus.Fields{
		"dir":   l.dir,
		"count": len(records),
	}).Info("documents loaded")

	return records, nil
}

// loadFile 加载并解析单个文档文件
func (l *Loader) loadFile(name string) (Record, error) {
	path := filepath.Join(l.dir, name)

	parser, err := ParserFactory(path)
	if err != nil {
		return Record{}, err
	}

	content, err := parser.Parse(path)
	if err != nil {
		return Record{}, err
	}

	if !utf8.ValidString(content) {
		return Record{}, fmt.Errorf("file %s is not valid UTF-8 text", name)
	}

	if strings.TrimSpace(content) == "" {
		return Record{}, fmt.Errorf("file %s contains no text content", name)
	}

	return Record{
		Content: content,
		Source:  name,
	}, nil
}
