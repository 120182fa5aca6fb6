package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/user/bluckboster/internal/model"
)

// TriviaCount 每部电影需要的问答数量
const TriviaCount = 3

var (
	ErrMalformedHeader = errors.New("trivia: 未找到问题标题")
	ErrMissingAnswer   = errors.New("trivia: 问题缺少答案")
	ErrWrongCount      = errors.New("trivia: 问答数量不正确")
)

// IsTriviaParseError 判断是否为问答解析错误（而非生成服务错误）
func IsTriviaParseError(err error) bool {
	return errors.Is(err, ErrMalformedHeader) ||
		errors.Is(err, ErrMissingAnswer) ||
		errors.Is(err, ErrWrongCount)
}

// TriviaStrategy 将生成文本切分为问答对
type TriviaStrategy interface {
	Split(text string) (model.Trivia, error)
}

// NewTriviaStrategy 按名称选择切分策略：regex（默认）或 marker
func NewTriviaStrategy(name string) (TriviaStrategy, error) {
	switch name {
	case "", "regex":
		return RegexStrategy{}, nil
	case "marker":
		return MarkerStrategy{}, nil
	default:
		return nil, fmt.Errorf("未知的问答解析策略: %s", name)
	}
}

// ParseTrivia 切分并校验数量
func ParseTrivia(text string, strategy TriviaStrategy) (model.Trivia, error) {
	if strategy == nil {
		strategy = RegexStrategy{}
	}
	pairs, err := strategy.Split(text)
	if err != nil {
		return nil, err
	}
	if len(pairs) != TriviaCount {
		return nil, fmt.Errorf("%w: 期望 %d 组，实际 %d 组", ErrWrongCount, TriviaCount, len(pairs))
	}
	return pairs, nil
}

// MarkerStrategy 以 "**Question " 分块，块内按空行切分：
// 第二段为问题，最后一段的首行为答案
type MarkerStrategy struct{}

const questionMarker = "**Question "

func (MarkerStrategy) Split(text string) (model.Trivia, error) {
	blocks := strings.Split(text, questionMarker)
	if len(blocks) < 2 {
		return nil, ErrMalformedHeader
	}

	var pairs model.Trivia
	for i, block := range blocks[1:] {
		parts := strings.Split(strings.TrimSpace(block), "\n\n")
		if len(parts) < 3 {
			return nil, fmt.Errorf("%w: 第 %d 题", ErrMissingAnswer, i+1)
		}
		last := strings.SplitN(parts[len(parts)-1], "\n", 2)[0]
		pair := model.TriviaPair{
			Question: cleanTrivia(parts[1]),
			Answer:   cleanAnswer(last),
		}
		if pair.Question == "" || pair.Answer == "" {
			return nil, fmt.Errorf("%w: 第 %d 题", ErrMissingAnswer, i+1)
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// RegexStrategy 按 "**Question N**" 标题切分，再以 "Answer:" 分出问题与答案
type RegexStrategy struct{}

var (
	questionHeader = regexp.MustCompile(`\*\*\s*Question\s+\d+\s*:?\s*\*\*:?`)
	answerLabel    = regexp.MustCompile(`(?i)answer\s*:`)
)

func (RegexStrategy) Split(text string) (model.Trivia, error) {
	headers := questionHeader.FindAllStringIndex(text, -1)
	if len(headers) == 0 {
		return nil, ErrMalformedHeader
	}

	var pairs model.Trivia
	for i, loc := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		block := text[loc[1]:end]

		label := answerLabel.FindStringIndex(block)
		if label == nil {
			return nil, fmt.Errorf("%w: 第 %d 题", ErrMissingAnswer, i+1)
		}
		answer := strings.TrimLeft(block[label[1]:], "* \t")
		answer = strings.SplitN(answer, "\n", 2)[0]

		pair := model.TriviaPair{
			Question: cleanTrivia(block[:label[0]]),
			Answer:   cleanTrivia(answer),
		}
		if pair.Question == "" || pair.Answer == "" {
			return nil, fmt.Errorf("%w: 第 %d 题", ErrMissingAnswer, i+1)
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// cleanTrivia 去除 markdown 星号与首尾空白，合并内部空白
func cleanTrivia(s string) string {
	return CleanText(strings.ReplaceAll(s, "*", ""))
}

func cleanAnswer(s string) string {
	s = cleanTrivia(s)
	if loc := answerLabel.FindStringIndex(s); loc != nil && loc[0] == 0 {
		s = strings.TrimSpace(s[loc[1]:])
	}
	return s
}
