package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/user/bluckboster/internal/model"
)

var validate = validator.New()

// CleanText 合并多余空白
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MetricsOutcome 指标解析结果分类
type MetricsOutcome int

const (
	MetricsParsed MetricsOutcome = iota
	MetricsNoObject
	MetricsMalformed
	MetricsEmpty
	MetricsOutOfRange
)

func (o MetricsOutcome) String() string {
	switch o {
	case MetricsParsed:
		return "parsed"
	case MetricsNoObject:
		return "no_object"
	case MetricsMalformed:
		return "malformed"
	case MetricsEmpty:
		return "empty"
	case MetricsOutOfRange:
		return "out_of_range"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MetricsResult 解析结果，只有 MetricsParsed 时 Metrics 有效
type MetricsResult struct {
	Outcome MetricsOutcome
	Metrics model.Metrics
	Err     error
}

func (r MetricsResult) OK() bool {
	return r.Outcome == MetricsParsed
}

// ExtractJSONObject 截取第一个 "{" 到最后一个 "}" 之间的文本（含括号）
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseMetrics 从生成文本中解析 0-100 的评分指标
func ParseMetrics(text string) MetricsResult {
	raw, ok := ExtractJSONObject(text)
	if !ok {
		return MetricsResult{Outcome: MetricsNoObject}
	}

	var values map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return MetricsResult{Outcome: MetricsMalformed, Err: fmt.Errorf("解析指标 JSON 失败: %w", err)}
	}
	// 截取范围内只能有一个 JSON 值
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return MetricsResult{Outcome: MetricsMalformed, Err: errors.New("解析指标 JSON 失败: 对象之后仍有内容")}
	}
	if len(values) == 0 {
		return MetricsResult{Outcome: MetricsEmpty}
	}

	metrics := make(model.Metrics, len(values))
	for k, v := range values {
		score, err := model.ToScore(v)
		if err != nil {
			return MetricsResult{Outcome: MetricsMalformed, Err: fmt.Errorf("指标 %q: %w", k, err)}
		}
		metrics[k] = score
	}
	metrics = metrics.Normalize()

	for k, v := range metrics {
		if err := validate.Var(v, "gte=0,lte=100"); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				err = fmt.Errorf("指标 %q 超出范围: %v", k, v)
			}
			return MetricsResult{Outcome: MetricsOutOfRange, Err: err}
		}
	}
	return MetricsResult{Outcome: MetricsParsed, Metrics: metrics}
}
