// Package edgar 访问 SEC EDGAR 的提交索引与文档归档。
//
// SEC 公平访问政策要求自动化客户端声明 User-Agent 并控制在每秒
// 十次请求以内，Client 内置令牌桶限速与有界重试来满足这一约束。
package edgar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kart-io/logger"

	edgaropts "github.com/kart-io/proxyscope/pkg/options/edgar"
	"github.com/kart-io/proxyscope/pkg/utils/json"
)

// proxyFormRE 匹配正式的年度委托书表单：DEF 14A 及其修订版
// DEFR14A，EDGAR 上空格的有无并不一致。
var proxyFormRE = regexp.MustCompile(`(?i)^DEFR? ?14A$`)

// IsProxyForm 判断表单类型是否为正式委托书（DEF 14A / DEFR14A）。
func IsProxyForm(form string) bool {
	return proxyFormRE.MatchString(strings.TrimSpace(form))
}

// Client 是 SEC EDGAR 的只读客户端。
type Client struct {
	opts    *edgaropts.Options
	httpCli *http.Client
	limiter *rate.Limiter
}

// New 创建 EDGAR 客户端。opts 为 nil 时使用默认配置。
func New(opts *edgaropts.Options) (*Client, error) {
	if opts == nil {
		opts = edgaropts.NewOptions()
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("edgar: invalid options: %v", errs)
	}
	if err := opts.Complete(); err != nil {
		return nil, err
	}
	return &Client{
		opts:    opts,
		httpCli: &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
	}, nil
}

// ParseCIK 解析 CIK 字符串为数值。接受带或不带前导零的十进制
// 数字，最长十位。
func ParseCIK(cik string) (uint64, error) {
	s := strings.TrimSpace(cik)
	if s == "" {
		return 0, fmt.Errorf("edgar: cik cannot be empty")
	}
	if len(s) > 10 {
		return 0, fmt.Errorf("edgar: cik %q exceeds 10 digits", cik)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("edgar: invalid cik %q: %w", cik, err)
	}
	return n, nil
}

// PadCIK 将 CIK 数值格式化为 EDGAR 索引使用的十位零填充形式。
func PadCIK(cik uint64) string {
	return fmt.Sprintf("%010d", cik)
}

// Submissions 拉取一家公司的完整提交索引。
func (c *Client) Submissions(ctx context.Context, cik string) (*Submissions, error) {
	n, err := ParseCIK(cik)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.opts.SubmissionsBaseURL, PadCIK(n))

	var subs Submissions
	if err := c.getJSON(ctx, url, &subs); err != nil {
		return nil, fmt.Errorf("edgar: fetch submissions for cik %s: %w", cik, err)
	}
	return &subs, nil
}

// ProxyFilings 列出一家公司在给定年份提交的全部正式委托书
// （DEF 14A 与 DEFR14A）。
func (c *Client) ProxyFilings(ctx context.Context, cik string, year int) ([]Filing, error) {
	subs, err := c.Submissions(ctx, cik)
	if err != nil {
		return nil, err
	}
	return c.ProxyFilingsOf(ctx, subs, year)
}

// ProxyFilingsOf 从已取得的提交索引中筛出给定年份的正式委托书。
//
// 最近一千条之外的提交存放在附加索引文件里，只翻阅日期区间
// 与目标年份相交的那些文件。
func (c *Client) ProxyFilingsOf(ctx context.Context, subs *Submissions, year int) ([]Filing, error) {
	rows := subs.Filings.Recent.rows()
	for _, ref := range subs.Filings.Files {
		if !ref.CoversYear(year) {
			continue
		}
		url := fmt.Sprintf("%s/submissions/%s", c.opts.SubmissionsBaseURL, ref.Name)
		var page FilingColumns
		if err := c.getJSON(ctx, url, &page); err != nil {
			return nil, fmt.Errorf("edgar: fetch submissions page %s: %w", ref.Name, err)
		}
		rows = append(rows, page.rows()...)
	}

	var filings []Filing
	for _, f := range rows {
		if IsProxyForm(f.Form) && f.FilingDate.Year() == year {
			filings = append(filings, f)
		}
	}
	return filings, nil
}

// Document 下载一份归档文档的原始字节。
func (c *Client) Document(ctx context.Context, cik, accession, primaryDoc string) ([]byte, error) {
	n, err := ParseCIK(cik)
	if err != nil {
		return nil, err
	}
	if primaryDoc == "" {
		primaryDoc = DefaultPrimaryDocument
	}
	url := fmt.Sprintf("%s/Archives/edgar/data/%d/%s/%s",
		c.opts.ArchivesBaseURL, n, strings.ReplaceAll(accession, "-", ""), primaryDoc)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("edgar: fetch document %s/%s: %w", accession, primaryDoc, err)
	}
	return body, nil
}

// DocumentURL 返回一份归档文档的完整地址，用于记录来源。
func (c *Client) DocumentURL(cik, accession, primaryDoc string) string {
	n, err := ParseCIK(cik)
	if err != nil {
		return ""
	}
	if primaryDoc == "" {
		primaryDoc = DefaultPrimaryDocument
	}
	return fmt.Sprintf("%s/Archives/edgar/data/%d/%s/%s",
		c.opts.ArchivesBaseURL, n, strings.ReplaceAll(accession, "-", ""), primaryDoc)
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get 执行一次受限速与重试保护的 GET。传输错误、5xx 和 429 会
// 线性退避后重试，其余非 2xx 状态立即失败。每次尝试（含重试）
// 都先经过限速器。
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Warnw("retrying edgar request",
				"url", url,
				"attempt", attempt,
				"error", lastErr.Error(),
			)
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.doOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.opts.MaxRetries+1, lastErr)
}

func (c *Client) doOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, fmt.Errorf("read response: %w", err)
		}
		return body, false, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
}
