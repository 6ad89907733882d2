package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/proxyscope/internal/model"
)

func chunkRow(index int, content string) *model.Chunk {
	return &model.Chunk{ChunkIndex: index, Content: content}
}

func TestRetrieveMergesQueriesInOrder(t *testing.T) {
	chunks := &keyedChunkStore{results: map[float32][]*model.Chunk{
		1: {chunkRow(5, "proposals table"), chunkRow(3, "say-on-pay")},
		2: {chunkRow(3, "say-on-pay"), chunkRow(7, "director bios")},
		3: {chunkRow(9, "appendix a")},
	}}
	r := NewRetriever(chunks)

	texts, err := r.Retrieve(context.Background(), 1,
		[][]float32{{1}, {2}, {3}}, 10)
	require.NoError(t, err)

	// 查询顺序优先，块按首次出现去重。
	assert.Equal(t, []string{"proposals table", "say-on-pay", "director bios", "appendix a"}, texts)
}

func TestRetrieveTruncatesToK(t *testing.T) {
	chunks := &keyedChunkStore{results: map[float32][]*model.Chunk{
		1: {chunkRow(0, "a"), chunkRow(1, "b")},
		2: {chunkRow(2, "c"), chunkRow(3, "d")},
	}}
	r := NewRetriever(chunks)

	texts, err := r.Retrieve(context.Background(), 1, [][]float32{{1}, {2}}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestRetrieveEmptyInputs(t *testing.T) {
	r := NewRetriever(&keyedChunkStore{})

	texts, err := r.Retrieve(context.Background(), 1, nil, 5)
	require.NoError(t, err)
	assert.Nil(t, texts)

	texts, err = r.Retrieve(context.Background(), 1, [][]float32{{1}}, 0)
	require.NoError(t, err)
	assert.Nil(t, texts)
}

func TestRetrievePropagatesStoreError(t *testing.T) {
	wantErr := errors.New("pgvector down")
	r := NewRetriever(&keyedChunkStore{err: wantErr})

	_, err := r.Retrieve(context.Background(), 1, [][]float32{{1}, {2}}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}
