package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/llm"
	"github.com/kart-io/proxyscope/pkg/utils/json"
)

// probeQueries 是多路召回用的固定查询，覆盖委托书中列出投票
// 议题的几种常见形态。
var probeQueries = []string{
	"proxy proposals table",
	"list of proposals",
	"shareholder proposals",
	"director nominees",
	"proxy voting items",
}

// 议题抽取的系统提示词。输出约定为只含 proxy_questions 数组的
// JSON 对象，字段与 extractedQuestion 一一对应。
const extractionSystemPrompt = "You are an expert in parsing U.S. corporate proxy statements (DEF 14A) and extracting proxy voting questions.\n" +
	"You are an autonomous agent: your goal is to extract every individual proxy voting question from the proxy statement as structured data. Do not end your turn until you are certain you have exhaustively extracted and verified all proxy voting questions, including those that are grouped, referenced, or require searching supplementary tables or appendices.\n" +
	"Process Requirements:\n" +
	"- Reflect extensively before and after each action. Plan your next step thoughtfully and review previous outputs for completeness or errors before continuing.\n" +
	"- Use all available tools to inspect file content, structure, or tables—never guess or hallucinate.\n" +
	"- Do not rely solely on function calls; use reasoning and evidence-gathering to ensure accuracy.\n" +
	"- Whenever a table or summary of proposals is provided, treat it as your authoritative source for numbering, question order, and grouping. Return to this table to cross-check before finalizing your answer.\n" +
	"Question Extraction Rules:\n" +
	"- If any question is grouped (e.g., director slates, bundled shareholder proposals), split it into individual sub-questions and assign a unique sub-identifier (e.g., “1a”, “1b”).\n" +
	"- Director slates: If a proposal refers to a group of nominees (e.g., “elect the following 13 nominees”), find the list of names (usually in a table/section like “Nominees”, “Board of Director Nominees\", or “Election of Directors”). Only include nominees and exclude any directors who are retiring. Extract one question per nominee.\n" +
	"- Shareholder proposals: If a proposal refers to multiple or grouped shareholder items, search the rest of the document for the detailed proposal text, which is always present, typically in a section or appendix. Extract each proposal as a separate item.\n" +
	"- Never assume a summary table omits underlying details—verify all references by inspecting relevant sections.\n" +
	"Fields to Extract for Each Question:\n" +
	"- `question_id` – Use the exact printed identifier from the proxy (e.g., “Proposal 2”, “Item 4”). For sub-questions, append a letter (“1a”, “1b”…). If missing, assign a sequential number.\n" +
	"- `question_text` – Full proposal text. If too long, provide a clear, accurate paraphrase that captures the substance of the proposal.\n" +
	"- `board_vote_recommendation` – “For”, “Against”, “Abstain”, or “Not Stated” if missing.\n" +
	"- `question_type` – One of: \"board_composition\", \"compensation\", \"shareholder_rights\", \"environmental_social\", \"transactions\", \"other\".\n" +
	"- `is_shareholder_proposal` – true if proposed by a shareholder, false otherwise.\n" +
	"\n" +
	"### Agent Workflow:\n" +
	"1. Plan: Read the full proxy statement, focusing first on the main proposals table (if present).\n" +
	"2. Extract: List all proposal questions, preserving exact numbering/labels, and split out grouped questions.\n" +
	"3. Investigate: For grouped or referenced items, follow links or section references to extract all sub-questions.\n" +
	"4. Reflect: After extraction, compare your result to the original proposals table. Double-check that all items and sub-items are included, correctly labeled, and nothing is missed.\n" +
	"5. Only finish when all questions have been extracted, numbered correctly, and verified.\n" +
	"\n" +
	"### Output format:\n" +
	"Return only a JSON object with a key \"proxy_questions\" containing an array of question objects. No commentary or explanations.\n" +
	"Example:\n" +
	"{\n" +
	"  \"proxy_questions\": [\n" +
	"    {\n" +
	"      \"question_id\": \"1a\",\n" +
	"      \"question_text\": \"Re-elect Mr. John Doe to the board\",\n" +
	"      \"board_vote_recommendation\": \"For\",\n" +
	"      \"question_type\": \"board_composition\",\n" +
	"      \"is_shareholder_proposal\": false\n" +
	"    },\n" +
	"    {\n" +
	"      \"question_id\": \"1b\",\n" +
	"      \"question_text\": \"Elect Mrs. Elizabeth Taylor to the board\",\n" +
	"      \"board_vote_recommendation\": \"For\",\n" +
	"      \"question_type\": \"board_composition\",\n" +
	"      \"is_shareholder_proposal\": false\n" +
	"    },\n" +
	"    {\n" +
	"      \"question_id\": \"2\",\n" +
	"      \"question_text\": \"Approve executive compensation (Say-on-Pay)\",\n" +
	"      \"board_vote_recommendation\": \"For\",\n" +
	"      \"question_type\": \"compensation\",\n" +
	"      \"is_shareholder_proposal\": false\n" +
	"    },\n" +
	"    {\n" +
	"      \"question_id\": \"3\",\n" +
	"      \"question_text\": \"Shareholder proposal to publish an annual report on political donations\",\n" +
	"      \"board_vote_recommendation\": \"Against\",\n" +
	"      \"question_type\": \"environmental_social\",\n" +
	"      \"is_shareholder_proposal\": true\n" +
	"    }\n" +
	"  ]\n" +
	"}\n"

// maxQuestionKeyLen 与 questions.question_key 的列宽一致。
const maxQuestionKeyLen = 32

// Extractor 从已入库的文件块中抽取投票议题并写入 questions 表。
type Extractor struct {
	embedder  llm.EmbeddingProvider
	chat      llm.ChatProvider
	retriever *Retriever
	questions store.QuestionStore
	topK      int
}

// NewExtractor 创建议题抽取器。topK 不为正数时使用 DefaultTopK。
func NewExtractor(embedder llm.EmbeddingProvider, chat llm.ChatProvider, retriever *Retriever, questions store.QuestionStore, topK int) *Extractor {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Extractor{
		embedder:  embedder,
		chat:      chat,
		retriever: retriever,
		questions: questions,
		topK:      topK,
	}
}

type extractedQuestion struct {
	QuestionID              string `json:"question_id"`
	QuestionText            string `json:"question_text"`
	BoardVoteRecommendation string `json:"board_vote_recommendation"`
	QuestionType            string `json:"question_type"`
	IsShareholderProposal   bool   `json:"is_shareholder_proposal"`
}

type extractionResponse struct {
	ProxyQuestions []extractedQuestion `json:"proxy_questions"`
}

// Extract 为一份文件检索议题相关上下文、调用大模型抽取议题并
// 落库，返回落库条数。抽取结果为空时返回 ErrNullExtraction。
//
// 上下文以 assistant 消息的形式附在对话末尾，user 消息只点名
// 公司，与提示词约定的工作方式一致。
func (e *Extractor) Extract(ctx context.Context, filing *model.Filing) (int, error) {
	vectors, err := e.embedder.Embed(ctx, probeQueries)
	if err != nil {
		return 0, fmt.Errorf("embed probe queries: %w", err)
	}

	texts, err := e.retriever.Retrieve(ctx, filing.ID, vectors, e.topK)
	if err != nil {
		return 0, err
	}

	raw, err := e.chat.ChatJSON(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: extractionSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Extract the proxy questions for %s.", filing.CompanyName)},
		{Role: llm.RoleAssistant, Content: strings.Join(texts, "\n\n")},
	})
	if err != nil {
		return 0, fmt.Errorf("extract questions for filing %s: %w", filing.ProxyID, err)
	}

	var resp extractionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("parse extraction output: %w", err)
	}

	items := make([]*model.Question, 0, len(resp.ProxyQuestions))
	for i, q := range resp.ProxyQuestions {
		text := strings.TrimSpace(q.QuestionText)
		if text == "" {
			logger.Warnw("抽取结果缺少议题文本，丢弃该条",
				"filing_id", filing.ID, "question_id", q.QuestionID)
			continue
		}
		items = append(items, &model.Question{
			FilingID:              filing.ID,
			QuestionKey:           questionKey(q.QuestionID, i),
			QuestionText:          text,
			BoardRecommendation:   model.NormalizeRecommendation(q.BoardVoteRecommendation),
			QuestionType:          model.NormalizeQuestionType(q.QuestionType),
			IsShareholderProposal: q.IsShareholderProposal,
			Status:                model.StatusNew,
		})
	}
	if len(items) == 0 {
		return 0, ErrNullExtraction
	}

	if err := e.questions.UpsertBatch(ctx, items); err != nil {
		return 0, err
	}

	logger.Infow("议题抽取完成",
		"proxy_id", filing.ProxyID, "questions", len(items))
	return len(items), nil
}

// questionKey 归一化模型给出的议题编号：缺失时按序号补位，超长
// 截断到列宽。
func questionKey(id string, i int) string {
	key := strings.TrimSpace(id)
	if key == "" {
		key = strconv.Itoa(i + 1)
	}
	if len(key) > maxQuestionKeyLen {
		key = key[:maxQuestionKeyLen]
	}
	return key
}
