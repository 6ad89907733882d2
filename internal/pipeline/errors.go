package pipeline

import (
	"errors"
	"fmt"
)

// 大模型结构化输出为空（或有效内容为零条）时返回的哨兵错误。
// 这类失败由队列标记 ERROR 后重试，不视为数据损坏。
var (
	// ErrNullExtraction 表示议题抽取没有产出任何议题。
	ErrNullExtraction = errors.New("pipeline: extraction returned no questions")
	// ErrNullRecommendation 表示投票建议生成的结构化输出为空。
	ErrNullRecommendation = errors.New("pipeline: recommendation output was null")
	// ErrFilingTooShort 表示文档正文过短，不是完整的委托书。
	ErrFilingTooShort = errors.New("pipeline: filing text too short")
)

// IntegrityError 表示数据完整性被破坏，比如嵌入向量维度与库表
// 不符。这类错误重试也不会恢复，需要人工介入。
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("pipeline: integrity violation in %s: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IsIntegrity 判断 err 链上是否有数据完整性错误。
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
