package edgar

import "strings"

// 文档类别。
const (
	KindProxyStatement  = "proxy_statement"
	KindProxySupplement = "proxy_supplement"
	KindContestantProxy = "contestant_proxy"
	KindOther           = "other"
)

// 修订级别。
const (
	RevisionOriginal   = "original"
	RevisionRevision   = "revision"
	RevisionSupplement = "supplement"
	RevisionOther      = "other"
)

// FormClass 描述一种 SEC 表单在委托书语境下的类别与修订级别。
type FormClass struct {
	Kind     string
	Revision string
}

// ClassifyForm 将表单类型映射为文档类别。大小写与空格不敏感：
// "def 14a" 与 "DEF14A" 等价。
//
// DEF 14A 是正式委托书原件，DEFR14A 是其修订版，DEFA14A 是补充
// 材料；DEFC14A、PREC14A、PRRN14A 来自征集竞争方。其余表单一律
// 归入 other。
func ClassifyForm(form string) FormClass {
	switch strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(form)), " ", "") {
	case "DEF14A":
		return FormClass{Kind: KindProxyStatement, Revision: RevisionOriginal}
	case "DEFR14A":
		return FormClass{Kind: KindProxyStatement, Revision: RevisionRevision}
	case "DEFA14A":
		return FormClass{Kind: KindProxySupplement, Revision: RevisionSupplement}
	case "DEFC14A", "PREC14A", "PRRN14A":
		return FormClass{Kind: KindContestantProxy, Revision: RevisionOriginal}
	default:
		return FormClass{Kind: KindOther, Revision: RevisionOther}
	}
}
