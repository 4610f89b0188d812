package document

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Parser 文档解析器接口
// 负责将不同格式的文档解析为纯文本
type Parser interface {
	// Parse 解析文档，返回文本内容
	Parse(filePath string) (string, error)

	// ParseReader 从Reader解析文档，返回文本内容
	// filename用于确定文档类型
	ParseReader(r io.Reader, filename string) (string, error)
}

// ErrUnsupportedType 不支持的文档类型
var ErrUnsupportedType = errors.New("unsupported document type")

// ContentType 表示文档的内容类型
type ContentType string

const (
	// PDF 文档类型
	PDF ContentType = "pdf"
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// ParserFactory 解析器工厂函数，根据文件类型创建对应的解析器
func ParserFactory(filePath string) (Parser, error) {
	switch detectContentType(filePath) {
	case PDF:
		return NewPDFParser(), nil
	case Markdown:
		return NewMarkdownParser(), nil
	case PlainText:
		return NewPlainTextParser(), nil
	default:
		return nil, ErrUnsupportedType
	}
}

// detectContentType 根据文件扩展名检测内容类型
func detectContentType(filePath string) ContentType {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return PDF
	case ".md", ".markdown":
		return Markdown
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}

// Record 加载后的文档记录
// 一个输入文件对应一条记录，Source为文件名
type Record struct {
	Content string // 文档文本内容
	Source  string // 来源文件名
}

// Chunk 文档分块
// 切分后的文本窗口，继承所属记录的来源标签
type Chunk struct {
	Text     string // 窗口文本内容
	Source   string // 来源文件名（继承自Record）
	Position int    // 在原记录中的窗口序号
}
