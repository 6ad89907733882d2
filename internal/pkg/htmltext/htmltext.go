// Package htmltext 将 EDGAR 返回的 HTML 文档还原为纯文本。
package htmltext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// Extract 解析 HTML 字节流并返回折叠空白后的纯文本。
//
// 输入优先按 UTF-8 解码，包含非法字节序列时回退到 Windows-1252
// （EDGAR 上的旧文档常用该编码）。script、style、noscript 子树
// 整体丢弃，其余文本节点按文档顺序拼接。
func Extract(raw []byte) (string, error) {
	text, err := decode(raw)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("htmltext: parse html: %w", err)
	}

	var sb strings.Builder
	collect(doc, &sb)
	return Collapse(sb.String()), nil
}

// Collapse 将连续空白（含不间断空格）折叠为单个空格并修剪首尾。
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordCount 统计以空白分隔的词数。
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func decode(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("htmltext: decode windows-1252: %w", err)
	}
	return string(out), nil
}

func collect(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, sb)
	}
}
