package pipeline

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/llm"
)

// fakeEmbedder 为每个输入返回 dims 维向量，首分量是该文本在本批
// 里的序号加一，方便按向量区分查询。
type fakeEmbedder struct {
	dims    int
	err     error
	batches [][]string
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dims)
		v[0] = float32(i + 1)
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (f *fakeEmbedder) Name() string { return "fake-embedder" }

// fakeChat 记录最近一次 ChatJSON 的消息并返回固定输出。
type fakeChat struct {
	out      string
	err      error
	messages []llm.Message
}

func (f *fakeChat) Chat(context.Context, []llm.Message) (string, error) {
	return f.out, f.err
}

func (f *fakeChat) Generate(context.Context, string, string) (string, error) {
	return f.out, f.err
}

func (f *fakeChat) GenerateJSON(context.Context, string, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.out), nil
}

func (f *fakeChat) ChatJSON(_ context.Context, messages []llm.Message) ([]byte, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.out), nil
}

func (f *fakeChat) Name() string { return "fake-chat" }

// keyedChunkStore 按查询向量的首分量返回预置的块列表。
type keyedChunkStore struct {
	results map[float32][]*model.Chunk
	err     error
}

func (f *keyedChunkStore) Replace(context.Context, uint64, []*model.Chunk) error {
	return errors.New("keyedChunkStore: replace not supported")
}

func (f *keyedChunkStore) CountByFiling(context.Context, uint64) (int64, error) {
	return 0, nil
}

func (f *keyedChunkStore) NearestByFiling(_ context.Context, _ uint64, embedding []float32, k int) ([]*model.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	chunks := f.results[embedding[0]]
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	return chunks, nil
}

// recordingChunkStore 记录 Replace 写入的块，检索时原样返回。
type recordingChunkStore struct {
	filingID uint64
	chunks   []*model.Chunk
}

func (f *recordingChunkStore) Replace(_ context.Context, filingID uint64, chunks []*model.Chunk) error {
	f.filingID = filingID
	f.chunks = chunks
	return nil
}

func (f *recordingChunkStore) CountByFiling(context.Context, uint64) (int64, error) {
	return int64(len(f.chunks)), nil
}

func (f *recordingChunkStore) NearestByFiling(_ context.Context, _ uint64, _ []float32, k int) ([]*model.Chunk, error) {
	chunks := f.chunks
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	return chunks, nil
}

// fakeQuestionStore 收集 UpsertBatch 写入的议题。
type fakeQuestionStore struct {
	upserted []*model.Question
	err      error
}

func (f *fakeQuestionStore) UpsertBatch(_ context.Context, items []*model.Question) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, items...)
	return nil
}

func (f *fakeQuestionStore) Get(context.Context, uint64) (*model.Question, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestionStore) ListByFiling(context.Context, uint64, model.Status) ([]*model.Question, error) {
	return nil, nil
}

func (f *fakeQuestionStore) Claim(context.Context, int, ...uint64) (*store.QuestionClaim, error) {
	return nil, errors.New("fakeQuestionStore: claim not supported")
}

// fakeFilingStore 是内存版的文件存储。
type fakeFilingStore struct {
	byID      map[uint64]*model.Filing
	byProxyID map[string]*model.Filing
	nextID    uint64
	deleted   []uint64
}

func newFakeFilingStore() *fakeFilingStore {
	return &fakeFilingStore{
		byID:      make(map[uint64]*model.Filing),
		byProxyID: make(map[string]*model.Filing),
	}
}

func (f *fakeFilingStore) put(filing *model.Filing) {
	if filing.ID == 0 {
		f.nextID++
		filing.ID = f.nextID
	} else if filing.ID > f.nextID {
		f.nextID = filing.ID
	}
	cp := *filing
	f.byID[cp.ID] = &cp
	f.byProxyID[cp.ProxyID] = &cp
}

func (f *fakeFilingStore) Upsert(_ context.Context, filing *model.Filing) error {
	if existing, ok := f.byProxyID[filing.ProxyID]; ok {
		filing.ID = existing.ID
	}
	f.put(filing)
	return nil
}

func (f *fakeFilingStore) Get(_ context.Context, id uint64) (*model.Filing, error) {
	filing, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return filing, nil
}

func (f *fakeFilingStore) GetByProxyID(_ context.Context, proxyID string) (*model.Filing, error) {
	filing, ok := f.byProxyID[proxyID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return filing, nil
}

func (f *fakeFilingStore) List(context.Context, string, int, int) (*model.FilingList, error) {
	return &model.FilingList{}, nil
}

func (f *fakeFilingStore) Delete(_ context.Context, id uint64) error {
	filing, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.byProxyID, filing.ProxyID)
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeFactory 把内存 store 拼成 Factory。Transaction 直接在当前
// 状态上执行回调。
type fakeFactory struct {
	filings   *fakeFilingStore
	chunks    *recordingChunkStore
	questions *fakeQuestionStore
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		filings:   newFakeFilingStore(),
		chunks:    &recordingChunkStore{},
		questions: &fakeQuestionStore{},
	}
}

func (f *fakeFactory) Filings() store.FilingStore                 { return f.filings }
func (f *fakeFactory) Chunks() store.ChunkStore                   { return f.chunks }
func (f *fakeFactory) Questions() store.QuestionStore             { return f.questions }
func (f *fakeFactory) Recommendations() store.RecommendationStore { return nil }
func (f *fakeFactory) ScrapeJobs() store.ScrapeJobStore           { return nil }

func (f *fakeFactory) Transaction(_ context.Context, fn func(store.Factory) error) error {
	return fn(f)
}

func (f *fakeFactory) AutoMigrate() error { return nil }
func (f *fakeFactory) Close() error       { return nil }

// wordTokenizer 把空白分隔的词当作 token，便于控制块边界。
type wordTokenizer struct {
	words []string
}

func (t *wordTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	tokens := make([]int, len(fields))
	for i, w := range fields {
		tokens[i] = len(t.words)
		t.words = append(t.words, w)
	}
	return tokens
}

func (t *wordTokenizer) Decode(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = t.words[tok]
	}
	return strings.Join(parts, " ")
}
