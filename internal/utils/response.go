package utils

import (
	"encoding/json"
	"fmt"
	"io"
)

// Report 阶段执行结果的统一输出结构
type Report struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Success bool   `json:"success"`
}

// WriteReport 以 JSON 输出成功结果
func WriteReport(w io.Writer, stage string, data any) error {
	return writeReport(w, Report{Stage: stage, Message: "done", Data: data, Success: true})
}

func writeReport(w io.Writer, r Report) error {
	if w == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("输出结果失败: %w", err)
	}
	return nil
}
