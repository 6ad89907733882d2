package llm

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoSize 进程内向量缓存的默认容量。
const DefaultMemoSize = 4096

// MemoEmbeddingProvider 提供进程内 LRU 向量缓存的包装器。
// 适用于反复嵌入同一批固定文本的场景（如检索探测查询），
// 不依赖外部缓存服务。
type MemoEmbeddingProvider struct {
	provider EmbeddingProvider
	cache    *lru.Cache[string, []float32]
}

// NewMemoEmbeddingProvider 创建带进程内 LRU 缓存的 Embedding Provider。
// size 为缓存的最大条目数，小于等于 0 时使用 DefaultMemoSize。
func NewMemoEmbeddingProvider(provider EmbeddingProvider, size int) (*MemoEmbeddingProvider, error) {
	if size <= 0 {
		size = DefaultMemoSize
	}

	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("创建 LRU 缓存失败: %w", err)
	}

	return &MemoEmbeddingProvider{
		provider: provider,
		cache:    cache,
	}, nil
}

// EmbedSingle 生成单个文本的 Embedding（带进程内缓存）。
func (m *MemoEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := m.cache.Get(text); ok {
		return cached, nil
	}

	embedding, err := m.provider.EmbedSingle(ctx, text)
	if err != nil {
		return nil, err
	}

	m.cache.Add(text, embedding)
	return embedding, nil
}

// Embed 批量生成 Embedding（带进程内缓存）。
// 命中的文本直接取缓存，只有未命中的文本会发给底层 provider。
func (m *MemoEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	uncachedIndices := []int{}
	uncachedTexts := []string{}

	for i, text := range texts {
		if cached, ok := m.cache.Get(text); ok {
			embeddings[i] = cached
			continue
		}
		uncachedIndices = append(uncachedIndices, i)
		uncachedTexts = append(uncachedTexts, text)
	}

	if len(uncachedTexts) > 0 {
		uncachedEmbeddings, err := m.provider.Embed(ctx, uncachedTexts)
		if err != nil {
			return nil, err
		}

		for i, idx := range uncachedIndices {
			embeddings[idx] = uncachedEmbeddings[i]
			m.cache.Add(uncachedTexts[i], uncachedEmbeddings[i])
		}
	}

	return embeddings, nil
}

// Name 返回底层 provider 的名称。
func (m *MemoEmbeddingProvider) Name() string {
	return m.provider.Name() + "-memo"
}

// Len 返回当前缓存的条目数。
func (m *MemoEmbeddingProvider) Len() int {
	return m.cache.Len()
}

// Purge 清空缓存。
func (m *MemoEmbeddingProvider) Purge() {
	m.cache.Purge()
}

// 确保 MemoEmbeddingProvider 实现了 EmbeddingProvider 接口。
var _ EmbeddingProvider = (*MemoEmbeddingProvider)(nil)
