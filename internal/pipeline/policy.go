package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPolicyRules 是内置的投票政策规则集，未提供自定义规则
// 文件时按原样逐行拼进建议生成的系统提示词。
var DefaultPolicyRules = []string{
	"Do not support a related-party transaction where the disclosure is insufficient to assess the proposed transaction and its impact on minority shareholders.",
	"Do not support a share issuance that does not create long-term value for shareholders or does not treat all shareholders fairly.",
	"In developed markets, do not support a general authority to issue shares without pre-emptive rights above 20 percent of currently issued capital.",
	"Do not support a general authority to issue shares with pre-emptive rights if the size of the issuance is considered excessive relative to currently issued capital.",
	"Do not support changes to a company’s governing documents that are not in the best interest of shareholders.",
	"Support proposals requiring shareholder approval to adopt or amend anti-takeover measures.",
	"In emerging markets, do not support a general authority to issue shares without pre-emptive rights above 30 percent of currently issued capital.",
	"Do not support mergers, acquisitions, and other corporate transactions that do not create long-term value for shareholders.",
	"Support the abolition of a class of common stock with unequal voting rights on equitable terms.",
	"Do not support proposals on a company’s climate transition plan (‘Say on Climate’) where the plan does not meet NBIM core expectations on climate change or substantive guidance on transition plans.",
	"Do not support the introduction of voting caps.",
	"Support a proposal to de-bundle all agenda items.",
	"Support the right of shareholders to request a general meeting.",
	"Support the right of shareholders representing 50 percent of outstanding shares to act by written consent, i.e. act without calling a formal meeting.",
	"Do not support changes to a company’s governing documents if there is lack of disclosure.",
	"Support the right of shareholders to request a general meeting with a minimum ownership threshold of between 10 and 25 percent.",
	"Do not support a bundled agenda item unless all included items are acceptable.",
	"Support abolition of class of common stock with unequal voting rights on equitable terms.",
	"Do not support the creation of new or additional classes of common stock with unequal voting rights.",
	"Do not support creation of new or additional classes of common stock with unequal voting rights.",
	"Do not support remuneration policy/report where outcomes could prove unusually costly and incentive structure does not clearly align with shareholders’ interests.",
	"Do not support a remuneration policy or report where the accelerated vesting arrangement fails to meet local-market best practice.",
	"Do not support remuneration policy/report where pension arrangements are considered excessive in the local market.",
	"Do not support a remuneration policy or report with clear misalignment between pay and long-term value creation.",
	"Do not support a remuneration policy or report with significant concerns over one-off payments, including golden hellos, golden parachutes, or severance payments.",
	"Do not support re-election of a director or entire board if there are material failures in oversight, management, or disclosure of climate risks.",
	"Do not support remuneration policy or report if board received low shareholder support for most recent pay-related proposal and failed to address concern. Shareholder support below 85% raises concerns despite what may be claimed in the proxy statement.",
	"Do not support re-election of a director or entire board if shareholders have experienced unsatisfactory financial performance or there is a lack of faith in board strategy.",
	"Do not support a remuneration policy or report with significant concerns over its structure.",
	"Do not support re-election of a director or entire board if there are material failures in oversight, management, or disclosure of social risks.",
	"Do not support a remuneration policy or report where the vesting or holding period fails to meet local-market best practice.",
	"Do not support re-election of a director or entire board if there are material failures in oversight, management, or disclosure of environmental risks.",
	"Do not support a proposal to discharge a director or the board of liability for their activities if there is significant concern regarding board actions in previous years, such as misstatements, large goodwill write-offs, or material legal actions.",
	"Support a proposal to introduce proxy access with holding requirements of up to three years and up to three percent ownership.",
	"Do not support re-election of nomination/governance committee members, or other directors, if the board amended governing documents without shareholder approval.",
	"Do not support election of chair of nomination committee in emerging markets if board does not include at least one director of each gender.",
	"Do not support re-election of remuneration committee members or the board if they received low shareholder support for pay-related proposals and failed to address concern.",
	"Do not support a proposal to classify (stagger) the board.",
	"Support a proposal to introduce majority requirements in director elections.",
	"Do not support election of a director whose service on other boards has been associated with misconduct.",
	"Do not support re-election of audit committee members or other directors if the company’s financial statements received an adverse opinion or auditor flagged material weaknesses, and concerns were not adequately addressed.",
	"Support a proposal to declassify (de-stagger) the board.",
	"Do not support re-election of nomination/governance committee members, or other directors, if the company failed to act on material requests from shareholders that received majority support the previous year.",
	"Do not support re-election of a director or entire board if there have been material failures of governance or risk oversight, or breaches of fiduciary responsibility.",
	"Support a proposal to shorten the election term of a director, with a preference for a one-year term.",
	"Do not support the election of a director whose name has not been disclosed in the proxy information or where disclosure is insufficient for suitability assessment.",
	"Support a proposal to eliminate cumulative voting only if the company allows for shareholder input on director elections.",
	"Do not support the election of a director with a term longer than local-market best practice.",
	"Do not support re-election of chair of nomination committee in developed markets if board does not include at least two members of each gender.",
	"Do not support re-election of chair of nomination committee in developed markets if there is not at least one non-executive director with relevant industry experience.",
	"Vote against a board member who has has attended 50 percent or less of the board meetings in a single year",
	"Do not support the election of a director at a developed market company who sits on more than five boards, holds more than two board chairs, or otherwise has too many board or management roles to fulfil responsibilities effectively.",
	"Do not support the re-election of the chair of the nomination committee at companies in developed markets if the board does not include at least two members of each gender.",
	"Do not support the re-election of the chair of the nomination committee at a developed market company unless there is at least one non-executive director who has worked in the company’s industry.",
	"Support proposals to separate the roles of chairperson and CEO.",
}

// LoadPolicyRules 从 YAML 文件加载投票政策规则列表。路径为空时
// 返回内置默认规则；文件内容必须是非空的字符串数组。
func LoadPolicyRules(path string) ([]string, error) {
	if path == "" {
		return DefaultPolicyRules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy rules: %w", err)
	}

	var rules []string
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse policy rules %s: %w", path, err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("policy rules file %s contains no rules", path)
	}
	return rules, nil
}
