package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bitfantasy/perfeval/internal/scoring"
)

// Edit 一次表单操作：选择评级、填写分数或填写额外加减分
type Edit struct {
	Dimension string   `json:"dimension,omitempty"`
	Criterion string   `json:"criterion,omitempty"`
	Grade     string   `json:"grade,omitempty"`
	Score     *float64 `json:"score,omitempty"`
	Bonus     *float64 `json:"bonus,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// ReadEdits 读取 JSON 数组形式的操作列表
func ReadEdits(r io.Reader) ([]Edit, error) {
	var edits []Edit
	if err := json.NewDecoder(r).Decode(&edits); err != nil {
		return nil, fmt.Errorf("decode edits: %w", err)
	}
	return edits, nil
}

// ApplyEdits 按顺序把操作应用到表单，遇到第一个错误即停止
func ApplyEdits(form *scoring.Form, edits []Edit) error {
	for i, e := range edits {
		if err := applyEdit(form, e); err != nil {
			return fmt.Errorf("edit %d: %w", i, err)
		}
	}
	return nil
}

func applyEdit(form *scoring.Form, e Edit) error {
	if e.Bonus != nil {
		return form.EnterBonus(*e.Bonus, e.Reason)
	}

	dim, err := scoring.ParseDimension(e.Dimension)
	if err != nil {
		return err
	}
	switch {
	case e.Grade != "":
		return form.Select(dim, e.Criterion, e.Grade)
	case e.Score != nil:
		return form.EnterScore(dim, e.Criterion, *e.Score)
	}
	return fmt.Errorf("%s/%s: empty edit", e.Dimension, e.Criterion)
}
