package chunk

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding 是默认的 BPE 编码，与 OpenAI 的 embedding 模型保持一致。
const DefaultEncoding = "cl100k_base"

// TiktokenTokenizer 基于 tiktoken BPE 词表实现 Tokenizer。
type TiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

var _ Tokenizer = (*TiktokenTokenizer)(nil)

// NewTiktokenTokenizer 加载指定名称的 tiktoken 编码。
// encoding 为空时使用 DefaultEncoding。
func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("chunk: load tiktoken encoding %q: %w", encoding, err)
	}
	return &TiktokenTokenizer{encoding: enc}, nil
}

// Encode 将文本编码为 token ID 序列。
func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

// Decode 将 token ID 序列还原为文本。
func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}
