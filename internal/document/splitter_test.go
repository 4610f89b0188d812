package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextSplitter(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		splitter, err := NewTextSplitter(SplitterConfig{ChunkSize: 500, ChunkOverlap: 50})
		require.NoError(t, err)
		assert.NotNil(t, splitter)
	})

	t.Run("OverlapEqualsSize", func(t *testing.T) {
		_, err := NewTextSplitter(SplitterConfig{ChunkSize: 100, ChunkOverlap: 100})
		assert.Error(t, err)
	})

	t.Run("OverlapLargerThanSize", func(t *testing.T) {
		_, err := NewTextSplitter(SplitterConfig{ChunkSize: 100, ChunkOverlap: 150})
		assert.Error(t, err)
	})

	t.Run("NonPositiveChunkSize", func(t *testing.T) {
		_, err := NewTextSplitter(SplitterConfig{ChunkSize: 0, ChunkOverlap: 0})
		assert.Error(t, err)
	})

	t.Run("NegativeOverlap", func(t *testing.T) {
		_, err := NewTextSplitter(SplitterConfig{ChunkSize: 100, ChunkOverlap: -1})
		assert.Error(t, err)
	})
}

func TestSplitEmptyContent(t *testing.T) {
	splitter, err := NewTextSplitter(DefaultSplitterConfig())
	require.NoError(t, err)

	chunks := splitter.Split(Record{Content: "", Source: "empty.txt"})
	assert.Empty(t, chunks)
}

func TestSplitShortContent(t *testing.T) {
	splitter, err := NewTextSplitter(SplitterConfig{ChunkSize: 500, ChunkOverlap: 50})
	require.NoError(t, err)

	chunks := splitter.Split(Record{Content: "short text", Source: "a.txt"})
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, "a.txt", chunks[0].Source)
	assert.Equal(t, 0, chunks[0].Position)
}

func TestSplitWindowAdvance(t *testing.T) {
	splitter, err := NewTextSplitter(SplitterConfig{ChunkSize: 10, ChunkOverlap: 3})
	require.NoError(t, err)

	// 26字符，窗口10，步长7：[0,10) [7,17) [14,24) [21,26)
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := splitter.Split(Record{Content: text, Source: "alpha.txt"})

	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "hijklmnopq", chunks[1].Text)
	assert.Equal(t, "opqrstuvwx", chunks[2].Text)
	assert.Equal(t, "vwxyz", chunks[3].Text)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
		assert.Equal(t, "alpha.txt", chunk.Source)
		assert.NotEmpty(t, chunk.Text)
	}
}

func TestSplitExactWindow(t *testing.T) {
	splitter, err := NewTextSplitter(SplitterConfig{ChunkSize: 10, ChunkOverlap: 3})
	require.NoError(t, err)

	// 文本长度正好等于窗口大小，只产生一个分块
	chunks := splitter.Split(Record{Content: "abcdefghij", Source: "exact.txt"})
	require.Len(t, chunks, 1)
	assert.Equal(t, "abcdefghij", chunks[0].Text)
}

func TestSplitRuneCounting(t *testing.T) {
	splitter, err := NewTextSplitter(SplitterConfig{ChunkSize: 4, ChunkOverlap: 1})
	require.NoError(t, err)

	// 多字节字符按rune计数，窗口不会切断UTF-8序列
	text := "你好世界再见朋友"
	chunks := splitter.Split(Record{Content: text, Source: "cn.txt"})

	require.Len(t, chunks, 3)
	assert.Equal(t, "你好世界", chunks[0].Text)
	assert.Equal(t, "界再见朋", chunks[1].Text)
	assert.Equal(t, "朋友", chunks[2].Text)
}

func TestSplitOverlapContent(t *testing.T) {
	splitter, err := NewTextSplitter(SplitterConfig{ChunkSize: 10, ChunkOverlap: 3})
	require.NoError(t, err)

	text := strings.Repeat("x", 7) + "OVE" + strings.Repeat("y", 7)
	chunks := splitter.Split(Record{Content: text, Source: "o.txt"})

	require.Len(t, chunks, 2)
	// 重叠区出现在相邻两个分块中
	assert.True(t, strings.HasSuffix(chunks[0].Text, "OVE"))
	assert.True(t, strings.HasPrefix(chunks[1].Text, "OVE"))
}

func TestSplitRecords(t *testing.T) {
	splitter, err := NewTextSplitter(SplitterConfig{ChunkSize: 10, ChunkOverlap: 2})
	require.NoError(t, err)

	records := []Record{
		{Content: strings.Repeat("a", 15), Source: "one.txt"},
		{Content: "tiny", Source: "two.txt"},
	}

	chunks := splitter.SplitRecords(records)
	require.Len(t, chunks, 3)

	// 保持输入顺序，来源标签正确继承
	assert.Equal(t, "one.txt", chunks[0].Source)
	assert.Equal(t, "one.txt", chunks[1].Source)
	assert.Equal(t, "two.txt", chunks[2].Source)
	assert.Equal(t, 0, chunks[2].Position)
}
