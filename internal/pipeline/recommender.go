package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/llm"
	"github.com/kart-io/proxyscope/pkg/utils/json"
)

// meetingDateLayout 渲染股东大会日期，如 "June 05 2025"。
const meetingDateLayout = "January 02 2006"

// 投票建议的系统提示词模板。两个占位符依次是会议日期和逐行
// 拼接的政策规则。
const recommendationPromptTemplate = `
Given the text of a proxy voting question, analyze the official proxy statement and **the following voting policy rules** to produce a structured voting recommendation.
Ignore the board recommendation and develop an independent analysis based on the facts presented in the proxy statement and the policy rules.
This is for a shareholder meeting to be held on %s.

Relevant Voting Policy Rules:
%s

Follow these steps:
1. Analyze the Proxy Statement
   - Extract key facts from the proxy (see context below). Do *not* invent facts.
2. Apply Policy Criteria
   - Identify the relevant policies and check compliance.
3. Synthesize a Recommendation
   - Decide “For”, “Against”, “Abstain”, or “Not Stated”.
   - Justify your decision, linking facts to policy rules.
   - If “Against” or “Abstain”, cite the exact policy breach.

Expected Output:
Return **only** this JSON object:
{
  "question_id": "string",
  "proxy_question": "string",
  "voting_recommendation": "For | Against | Abstain | Not Stated",
  "rationale": "string",
  "citation": "string",
  "confidence": 0-1 float
}

No commentary outside the JSON!
`

// Recommender 为单个议题生成结构化投票建议。
//
// 检索上下文只用议题文本本身的向量：建议生成关心的是与该议题
// 直接相关的段落，而不是议题清单。
type Recommender struct {
	embedder  llm.EmbeddingProvider
	chat      llm.ChatProvider
	retriever *Retriever
	filings   store.FilingStore
	rules     []string
	topK      int
}

// NewRecommender 创建建议生成器。rules 为空时使用内置默认规则，
// topK 不为正数时使用 DefaultTopK。
func NewRecommender(embedder llm.EmbeddingProvider, chat llm.ChatProvider, retriever *Retriever, filings store.FilingStore, rules []string, topK int) *Recommender {
	if len(rules) == 0 {
		rules = DefaultPolicyRules
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Recommender{
		embedder:  embedder,
		chat:      chat,
		retriever: retriever,
		filings:   filings,
		rules:     rules,
		topK:      topK,
	}
}

type votingRecommendation struct {
	QuestionID           string  `json:"question_id"`
	ProxyQuestion        string  `json:"proxy_question"`
	VotingRecommendation string  `json:"voting_recommendation"`
	Rationale            string  `json:"rationale"`
	Citation             string  `json:"citation"`
	Confidence           float64 `json:"confidence"`
}

// Recommend 为一个议题生成投票建议。输出为空时返回
// ErrNullRecommendation；confidence 超出 [0, 1] 视为解析失败。
func (r *Recommender) Recommend(ctx context.Context, question *model.Question) (*model.Recommendation, error) {
	filing, err := r.filings.Get(ctx, question.FilingID)
	if err != nil {
		return nil, fmt.Errorf("load filing %d: %w", question.FilingID, err)
	}

	vector, err := r.embedder.EmbedSingle(ctx, question.QuestionText)
	if err != nil {
		return nil, fmt.Errorf("embed question %s: %w", question.QuestionKey, err)
	}

	texts, err := r.retriever.Retrieve(ctx, question.FilingID, [][]float32{vector}, r.topK)
	if err != nil {
		return nil, err
	}

	system := fmt.Sprintf(recommendationPromptTemplate,
		filing.FilingDate.Format(meetingDateLayout),
		strings.Join(r.rules, "\n"))
	user := fmt.Sprintf("Generate a voting recommendation for question %s: %s",
		question.QuestionKey, question.QuestionText)

	raw, err := r.chat.ChatJSON(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleAssistant, Content: strings.Join(texts, "\n\n")},
		{Role: llm.RoleUser, Content: user},
	})
	if err != nil {
		return nil, fmt.Errorf("generate recommendation for question %s: %w", question.QuestionKey, err)
	}

	var out votingRecommendation
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse recommendation output: %w", err)
	}
	if out.VotingRecommendation == "" {
		return nil, ErrNullRecommendation
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, fmt.Errorf("parse recommendation output: confidence %v outside [0, 1]", out.Confidence)
	}

	logger.Debugw("投票建议生成完成",
		"question_id", question.ID, "question_key", question.QuestionKey,
		"recommendation", out.VotingRecommendation, "confidence", out.Confidence)

	return &model.Recommendation{
		FilingID:             question.FilingID,
		QuestionID:           question.ID,
		VotingRecommendation: model.NormalizeRecommendation(out.VotingRecommendation),
		Rationale:            out.Rationale,
		Citation:             out.Citation,
		Confidence:           out.Confidence,
	}, nil
}
