// Package pipeline 实现从 EDGAR 抓取到投票建议生成的完整处理链：
// 拉取委托书、切块嵌入、议题抽取、逐题生成建议。
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/store"
)

// DefaultTopK 是检索上下文返回块数的默认上限。
const DefaultTopK = 20

// Retriever 在单份文件的块集合内做多向量最近邻检索。
type Retriever struct {
	chunks store.ChunkStore
}

// NewRetriever 创建检索器。
func NewRetriever(chunks store.ChunkStore) *Retriever {
	return &Retriever{chunks: chunks}
}

// Retrieve 对每个查询向量分别取 k 个最近块，再按查询顺序、块首次
// 出现的先后合并去重，最终截断到 k 条文本。
//
// 各向量的检索并行执行，合并阶段保持确定性顺序：同一输入永远
// 产出同一上下文。
func (r *Retriever) Retrieve(ctx context.Context, filingID uint64, queryVectors [][]float32, k int) ([]string, error) {
	if len(queryVectors) == 0 || k <= 0 {
		return nil, nil
	}

	results := make([][]*model.Chunk, len(queryVectors))
	g, ctx := errgroup.WithContext(ctx)
	for i, vec := range queryVectors {
		g.Go(func() error {
			chunks, err := r.chunks.NearestByFiling(ctx, filingID, vec, k)
			if err != nil {
				return fmt.Errorf("nearest chunks for query %d: %w", i, err)
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	texts := make([]string, 0, k)
	for _, chunks := range results {
		for _, c := range chunks {
			if _, ok := seen[c.ChunkIndex]; ok {
				continue
			}
			seen[c.ChunkIndex] = struct{}{}
			texts = append(texts, c.Content)
			if len(texts) == k {
				return texts, nil
			}
		}
	}
	return texts, nil
}
