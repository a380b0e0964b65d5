package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	keyMaxScore = "分数"
	keyMode     = "评分方式"
	keyCriteria = "评分项"
)

// Criterion 评分项
type Criterion struct {
	Name string
	Max  float64
}

// SectionSpec 单个维度的定义
type SectionSpec struct {
	MaxScore float64
	Mode     ScoringMode
	Criteria []Criterion
}

// Description 考核表描述文档，只包含出现过的维度
type Description map[Dimension]*SectionSpec

// ParseDescription 解析描述文档，兼容字符串包裹的 JSON。
// 出现未知维度时直接报错，不静默跳过。
func ParseDescription(raw json.RawMessage) (Description, error) {
	data, err := unwrapJSONString(raw)
	if err != nil {
		return Description{}, fmt.Errorf("decode description: %w", err)
	}
	if data == nil {
		return Description{}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Description{}, fmt.Errorf("decode description: %w", err)
	}

	desc := make(Description, len(top))
	for title, body := range top {
		dim, err := ParseDimension(title)
		if err != nil {
			return Description{}, err
		}
		spec, err := parseSection(dim, body)
		if err != nil {
			return Description{}, fmt.Errorf("decode %s: %w", title, err)
		}
		desc[dim] = spec
	}
	return desc, nil
}

func parseSection(dim Dimension, body json.RawMessage) (*SectionSpec, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}

	spec := &SectionSpec{Mode: ModeRating}
	if raw, ok := fields[keyMaxScore]; ok {
		v, err := rawFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyMaxScore, err)
		}
		spec.MaxScore = v
	}

	switch dim {
	case Product:
		spec.Mode = ModeScoring
		return spec, nil
	case Professional:
		if raw, ok := fields[keyMode]; ok {
			var mode string
			if err := json.Unmarshal(raw, &mode); err != nil {
				return nil, fmt.Errorf("%s: %w", keyMode, err)
			}
			spec.Mode = ParseMode(mode)
		}
	}

	if raw, ok := fields[keyCriteria]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		criteria, err := parseCriteria(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", keyCriteria, err)
		}
		spec.Criteria = criteria
	}
	return spec, nil
}

// parseCriteria 每个元素是只有一个键的对象 {名称: 最高分}
func parseCriteria(raw json.RawMessage) ([]Criterion, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]Criterion, 0, len(items))
	for i, item := range items {
		if len(item) != 1 {
			return nil, fmt.Errorf("item %d must have exactly one key, got %d", i, len(item))
		}
		for name, v := range item {
			limit, err := rawFloat(v)
			if err != nil {
				return nil, fmt.Errorf("item %q: %w", name, err)
			}
			out = append(out, Criterion{Name: name, Max: limit})
		}
	}
	return out, nil
}

// MarshalJSON 输出与页面、存储一致的结构，评分项保持顺序
func (d Description) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, dim := range Dimensions {
		spec, ok := d[dim]
		if !ok || spec == nil {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		writeKey(&buf, dim.Title())
		buf.WriteByte('{')
		writeKey(&buf, keyMaxScore)
		buf.WriteString(FormatScore(spec.MaxScore))
		if dim == Product {
			buf.WriteByte('}')
			continue
		}
		if dim == Professional {
			buf.WriteByte(',')
			writeKey(&buf, keyMode)
			mode, _ := json.Marshal(string(ParseMode(string(spec.Mode))))
			buf.Write(mode)
		}
		buf.WriteByte(',')
		writeKey(&buf, keyCriteria)
		buf.WriteByte('[')
		for i, c := range spec.Criteria {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('{')
			writeKey(&buf, c.Name)
			buf.WriteString(FormatScore(c.Max))
			buf.WriteByte('}')
		}
		buf.WriteString("]}")
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	k, _ := json.Marshal(key)
	buf.Write(k)
	buf.WriteByte(':')
}

// Criterion 按名称查找评分项
func (s *SectionSpec) Criterion(name string) (Criterion, bool) {
	if s == nil {
		return Criterion{}, false
	}
	for _, c := range s.Criteria {
		if c.Name == name {
			return c, true
		}
	}
	return Criterion{}, false
}
