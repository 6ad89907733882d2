// Package chunk 提供按 token 窗口切分长文本的工具。
package chunk

import (
	"fmt"
)

// Tokenizer 将文本编码为 token 序列并支持反向解码。
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Splitter 按固定 token 窗口与重叠切分文本。
//
// 对同一输入和同一配置，输出是确定性的：窗口 i 覆盖
// tokens[i*stride : i*stride+window]，其中 stride = window - overlap。
// 当某个窗口的右边界到达 token 序列末尾时立即停止。
type Splitter struct {
	tokenizer Tokenizer
	window    int
	overlap   int
}

// NewSplitter 创建 Splitter。overlap 必须满足 0 < overlap < window。
func NewSplitter(tokenizer Tokenizer, window, overlap int) (*Splitter, error) {
	if tokenizer == nil {
		return nil, fmt.Errorf("chunk: tokenizer cannot be nil")
	}
	if window <= 0 {
		return nil, fmt.Errorf("chunk: window must be positive, got %d", window)
	}
	if overlap <= 0 || overlap >= window {
		return nil, fmt.Errorf("chunk: overlap must be in (0, window), got overlap=%d window=%d", overlap, window)
	}
	return &Splitter{
		tokenizer: tokenizer,
		window:    window,
		overlap:   overlap,
	}, nil
}

// Window 返回窗口大小（token 数）。
func (s *Splitter) Window() int { return s.window }

// Overlap 返回相邻窗口的重叠大小（token 数）。
func (s *Splitter) Overlap() int { return s.overlap }

// Split 将文本切分为 token 窗口并逐个解码回文本。
//
// 空文本返回 nil；短于一个窗口的文本返回单个块（即原文的
// 编码再解码结果）。相邻块共享 overlap 个 token。
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	tokens := s.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	stride := s.window - s.overlap
	chunks := make([]string, 0, (len(tokens)+stride-1)/stride)
	for start := 0; ; start += stride {
		end := start + s.window
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, s.tokenizer.Decode(tokens[start:end]))
		if end >= len(tokens) {
			break
		}
	}
	return chunks
}

// CountTokens 返回文本的 token 数。
func (s *Splitter) CountTokens(text string) int {
	return len(s.tokenizer.Encode(text))
}
