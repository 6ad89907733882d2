package openai_test

import (
	"context"
	"fmt"
	"log"

	"github.com/kart-io/proxyscope/pkg/llm"
	_ "github.com/kart-io/proxyscope/pkg/llm/openai"
)

// 演示如何使用基本配置创建 OpenAI 供应商并进行对话。
func ExampleNewProvider_basic() {
	// 创建供应商（使用默认配置）
	provider, err := llm.NewProvider("openai", map[string]any{
		"api_key": "your-api-key-here",
	})
	if err != nil {
		log.Fatal(err)
	}

	// 进行对话
	ctx := context.Background()
	response, err := provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "你好，请介绍一下自己"},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response)
}

// 演示如何配置嵌入模型与向量维度。
func ExampleNewProvider_embedding() {
	provider, err := llm.NewEmbeddingProvider("openai", map[string]any{
		"api_key":     "your-api-key-here",
		"embed_model": "text-embedding-3-small",
		"dimensions":  1536,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	embeddings, err := provider.Embed(ctx, []string{
		"Election of directors",
		"Ratification of independent auditors",
	})
	if err != nil {
		log.Fatal(err)
	}

	for i, emb := range embeddings {
		fmt.Printf("文本 %d 的向量维度: %d\n", i+1, len(emb))
	}
}

// 演示如何使用 JSON 模式提取结构化数据。
func ExampleNewProvider_generateJSON() {
	provider, err := llm.NewChatProvider("openai", map[string]any{
		"api_key":    "your-api-key-here",
		"chat_model": "gpt-4o-mini",
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	raw, err := provider.GenerateJSON(
		ctx,
		"从以下文本中提取股东大会投票事项：Proposal 1: Election of Directors",
		"你是信息提取助手，只输出 JSON。",
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(raw))
}
