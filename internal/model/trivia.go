package model

import "strings"

const (
	TriviaPairSep = ":"
	TriviaItemSep = "&:&"
)

// TriviaPair 一组问答
type TriviaPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Trivia 一部电影的问答列表
type Trivia []TriviaPair

// Encode 编码为 "q:a&:&q:a&:&q:a"
func (t Trivia) Encode() string {
	parts := make([]string, 0, len(t))
	for _, p := range t {
		parts = append(parts, p.Question+TriviaPairSep+p.Answer)
	}
	return strings.Join(parts, TriviaItemSep)
}
