package edgar

import (
	"fmt"
	"time"
)

// Submissions 是 EDGAR 提交索引 API 返回的单个公司档案。
//
// 索引按「列式」组织：最近一千条提交的各字段平行存放在
// Recent 的切片里，更早的提交被分页到 Files 指向的附加文件中，
// 附加文件的内容就是一组裸的 FilingColumns。
type Submissions struct {
	CIK       string   `json:"cik"`
	Name      string   `json:"name"`
	Tickers   []string `json:"tickers"`
	Exchanges []string `json:"exchanges"`
	Filings   struct {
		Recent FilingColumns `json:"recent"`
		Files  []PageRef     `json:"files"`
	} `json:"filings"`
}

// PrimaryTicker 返回档案中的第一个交易代码，没有则返回空串。
func (s *Submissions) PrimaryTicker() string {
	if len(s.Tickers) == 0 {
		return ""
	}
	return s.Tickers[0]
}

// PrimaryExchange 返回档案中的第一个交易所，没有则返回空串。
func (s *Submissions) PrimaryExchange() string {
	if len(s.Exchanges) == 0 {
		return ""
	}
	return s.Exchanges[0]
}

// FilingColumns 是列式存放的提交记录，所有切片长度一致。
type FilingColumns struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	ReportDate      []string `json:"reportDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// PageRef 指向一个存放更早提交记录的附加索引文件。
// FilingFrom 和 FilingTo 标出该文件覆盖的提交日期区间。
type PageRef struct {
	Name        string `json:"name"`
	FilingCount int    `json:"filingCount"`
	FilingFrom  string `json:"filingFrom"`
	FilingTo    string `json:"filingTo"`
}

// CoversYear 判断该附加文件的日期区间是否与给定年份相交。
func (p PageRef) CoversYear(year int) bool {
	from, err := yearOf(p.FilingFrom)
	if err != nil {
		return true // 解析不了就保守地翻页
	}
	to, err := yearOf(p.FilingTo)
	if err != nil {
		return true
	}
	return from <= year && year <= to
}

// Filing 是一条展开后的提交记录。
type Filing struct {
	AccessionNumber string
	Form            string
	FilingDate      time.Time
	ReportDate      string
	PrimaryDocument string
}

// DefaultPrimaryDocument 在索引缺失主文档名时使用。
const DefaultPrimaryDocument = "primary_doc.htm"

// rows 将列式记录展开为逐条的 Filing。缺失的主文档名回填
// DefaultPrimaryDocument，无法解析的提交日期跳过该条记录。
func (c FilingColumns) rows() []Filing {
	filings := make([]Filing, 0, len(c.AccessionNumber))
	for i, accession := range c.AccessionNumber {
		date, err := time.Parse("2006-01-02", column(c.FilingDate, i))
		if err != nil {
			continue
		}
		doc := column(c.PrimaryDocument, i)
		if doc == "" {
			doc = DefaultPrimaryDocument
		}
		filings = append(filings, Filing{
			AccessionNumber: accession,
			Form:            column(c.Form, i),
			FilingDate:      date,
			ReportDate:      column(c.ReportDate, i),
			PrimaryDocument: doc,
		})
	}
	return filings
}

// column 取列式切片的第 i 个元素，越界返回空串。列长不齐在
// EDGAR 数据里偶有出现，不应让整份索引解析失败。
func column(col []string, i int) string {
	if i < len(col) {
		return col[i]
	}
	return ""
}

func yearOf(date string) (int, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("edgar: parse date %q: %w", date, err)
	}
	return t.Year(), nil
}
