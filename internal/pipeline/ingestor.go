package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/kart-io/logger"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/pkg/chunk"
	"github.com/kart-io/proxyscope/internal/pkg/htmltext"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/edgar"
	"github.com/kart-io/proxyscope/pkg/llm"
)

// minFilingWords 过滤掉正文过短、不可能是完整委托书的文档。
const minFilingWords = 500

// Ingestor 执行一个抓取任务：拉取公司一年内的全部正式委托书，
// 提取正文、切块、生成向量并落库，再逐份触发议题抽取。
type Ingestor struct {
	factory    store.Factory
	edgar      *edgar.Client
	embedder   llm.EmbeddingProvider
	extractor  *Extractor
	splitter   *chunk.Splitter
	dimensions int
}

// NewIngestor 创建抓取执行器。dimensions 是库表向量列的维度，
// 嵌入结果与之不符按数据完整性错误处理。
func NewIngestor(factory store.Factory, client *edgar.Client, embedder llm.EmbeddingProvider, extractor *Extractor, splitter *chunk.Splitter, dimensions int) *Ingestor {
	return &Ingestor{
		factory:    factory,
		edgar:      client,
		embedder:   embedder,
		extractor:  extractor,
		splitter:   splitter,
		dimensions: dimensions,
	}
}

// Run 执行抓取任务并汇总结果。
//
// 已入库的文件默认跳过；job.ReplaceExisting 为真时先删除旧文件
// （连带块、议题、建议）再重新入库。正文过短的文件计入跳过。
// 单份文件失败会让整个任务失败，由队列标记 ERROR 后重试；重试
// 时已完成的文件自然命中跳过分支。
func (in *Ingestor) Run(ctx context.Context, job *model.ScrapeJob) (*model.ScrapeResult, error) {
	// CIK 统一成十位零填充形式，保证同一公司的 proxy_id 不随
	// 任务里的写法（带不带前导零）变化。
	n, err := edgar.ParseCIK(job.CIK)
	if err != nil {
		return nil, err
	}
	cik := edgar.PadCIK(n)

	subs, err := in.edgar.Submissions(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions for CIK %s: %w", cik, err)
	}
	filings, err := in.edgar.ProxyFilingsOf(ctx, subs, job.Year)
	if err != nil {
		return nil, err
	}

	logger.Infow("开始抓取",
		"job_id", job.ID, "cik", cik, "year", job.Year,
		"company", subs.Name, "filings", len(filings))

	result := &model.ScrapeResult{FilingsFound: len(filings)}
	for _, f := range filings {
		proxyID := model.BuildProxyID(cik, f.AccessionNumber)

		existing, err := in.factory.Filings().GetByProxyID(ctx, proxyID)
		switch {
		case err == nil && !job.ReplaceExisting:
			logger.Infow("文件已入库，跳过", "proxy_id", proxyID)
			result.FilingsSkipped++
			continue
		case err == nil:
			if err := in.factory.Filings().Delete(ctx, existing.ID); err != nil {
				return nil, err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("check filing %s: %w", proxyID, err)
		}

		created, err := in.ingestOne(ctx, cik, subs, f, proxyID)
		if errors.Is(err, ErrFilingTooShort) {
			logger.Warnw("正文过短，跳过", "proxy_id", proxyID, "error", err.Error())
			result.FilingsSkipped++
			continue
		}
		if err != nil {
			return nil, err
		}

		result.FilingsIngested++
		result.QuestionsCreated += created
		result.ProxyIDs = append(result.ProxyIDs, proxyID)
	}

	logger.Infow("抓取完成",
		"job_id", job.ID, "found", result.FilingsFound,
		"ingested", result.FilingsIngested, "skipped", result.FilingsSkipped,
		"questions", result.QuestionsCreated)
	return result, nil
}

// ingestOne 入库一份委托书并抽取其议题，返回抽取的议题条数。
// 文件行与块集合在同一事务里写入，议题抽取在事务提交后进行。
func (in *Ingestor) ingestOne(ctx context.Context, cik string, subs *edgar.Submissions, f edgar.Filing, proxyID string) (int, error) {
	doc, err := in.edgar.Document(ctx, cik, f.AccessionNumber, f.PrimaryDocument)
	if err != nil {
		return 0, fmt.Errorf("fetch document %s: %w", proxyID, err)
	}

	text, err := htmltext.Extract(doc)
	if err != nil {
		return 0, fmt.Errorf("extract text of %s: %w", proxyID, err)
	}

	words := htmltext.WordCount(text)
	if words < minFilingWords {
		return 0, fmt.Errorf("%s has %d words: %w", proxyID, words, ErrFilingTooShort)
	}

	pieces := in.splitter.Split(text)
	vectors, err := in.embedder.Embed(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embed %d chunks of %s: %w", len(pieces), proxyID, err)
	}
	if len(vectors) != len(pieces) {
		return 0, &IntegrityError{
			Op:  "embed chunks",
			Err: fmt.Errorf("%s: %d chunks but %d embeddings", proxyID, len(pieces), len(vectors)),
		}
	}

	chunks := make([]*model.Chunk, len(pieces))
	for i, content := range pieces {
		if len(vectors[i]) != in.dimensions {
			return 0, &IntegrityError{
				Op:  "embed chunks",
				Err: fmt.Errorf("%s chunk %d: dimension %d, want %d", proxyID, i, len(vectors[i]), in.dimensions),
			}
		}
		chunks[i] = &model.Chunk{
			ChunkIndex: i,
			Content:    content,
			Embedding:  pgvector.NewVector(vectors[i]),
		}
	}

	filing := &model.Filing{
		ProxyID:         proxyID,
		CIK:             cik,
		AccessionNumber: f.AccessionNumber,
		PrimaryDocument: f.PrimaryDocument,
		CompanyName:     subs.Name,
		Ticker:          subs.PrimaryTicker(),
		Exchange:        subs.PrimaryExchange(),
		FormType:        f.Form,
		FilingDate:      f.FilingDate,
		WordCount:       words,
		SourceURL:       in.edgar.DocumentURL(cik, f.AccessionNumber, f.PrimaryDocument),
	}

	err = in.factory.Transaction(ctx, func(tx store.Factory) error {
		if err := tx.Filings().Upsert(ctx, filing); err != nil {
			return err
		}
		return tx.Chunks().Replace(ctx, filing.ID, chunks)
	})
	if err != nil {
		return 0, err
	}

	logger.Infow("文件已入库",
		"proxy_id", proxyID, "form", f.Form, "words", words, "chunks", len(chunks))

	return in.extractor.Extract(ctx, filing)
}
