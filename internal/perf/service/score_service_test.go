package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const checkDescription = `{
	"专业职能": {"分数": 40, "评分方式": "打分", "评分项": [{"沟通能力": 20}, {"专业技能": 20}]},
	"通用职能": {"分数": 20, "评分项": [{"团队协作": 10}, {"责任心": 10}]},
	"产品表现": {"分数": 30}
}`

func checkTable() scoring.EvaluationTable {
	return scoring.EvaluationTable{
		ID:          "1",
		ScoreRule:   json.RawMessage(`[{"grade":"A","value":"10"},{"grade":"B","value":"7"}]`),
		Description: json.RawMessage(checkDescription),
	}
}

func ptr(v float64) *float64 { return &v }

func TestCheckPermissions(t *testing.T) {
	emp := scoring.Employee{EmpID: "E9", ImmediateLeader: "L1", DirectJudgeID: "P1"}
	general := scoring.ItemList{}

	tests := []struct {
		name    string
		viewer  scoring.Viewer
		sub     scoring.Submission
		allowed bool
	}{
		{"leader general", scoring.Viewer{EmpID: "L1", IsRJ: true}, scoring.Submission{General: &general}, true},
		{"leader product", scoring.Viewer{EmpID: "L1", IsRJ: true}, scoring.Submission{Product: ptr(10)}, false},
		{"judge product", scoring.Viewer{EmpID: "P1", IsPJ: true}, scoring.Submission{Product: ptr(10)}, true},
		{"judge mismatch", scoring.Viewer{EmpID: "P2", IsPJ: true}, scoring.Submission{Product: ptr(10)}, false},
		{"judge details", scoring.Viewer{EmpID: "P1", IsPJ: true}, scoring.Submission{Details: &scoring.Details{General: &scoring.DetailList{}}}, false},
		{"bonus from leader", scoring.Viewer{EmpID: "L1", IsRJ: true}, scoring.Submission{ExtraBonus: scoring.ExtraBonus{Score: ptr(2)}}, false},
		{"super admin all", scoring.Viewer{EmpID: "SA", IsSA: true}, scoring.Submission{General: &general, Product: ptr(1), ExtraBonus: scoring.ExtraBonus{Score: ptr(-1)}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPermissions(tt.viewer, emp, &tt.sub)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestCheckRanges(t *testing.T) {
	table := checkTable()

	tests := []struct {
		name string
		sub  scoring.Submission
		want error
	}{
		{
			name: "valid",
			sub: scoring.Submission{
				Professional: &scoring.ProfessionalScores{Mode: scoring.ModeScoring, Items: scoring.ItemList{{Name: "沟通能力", Score: 20}}},
				General:      &scoring.ItemList{{Name: "团队协作", Grade: "A", Score: 10}},
				Product:      ptr(30),
			},
		},
		{
			name: "scored item above max",
			sub:  scoring.Submission{Professional: &scoring.ProfessionalScores{Mode: scoring.ModeScoring, Items: scoring.ItemList{{Name: "沟通能力", Score: 25}}}},
			want: ErrScoreOutOfRange,
		},
		{
			name: "unknown criterion",
			sub:  scoring.Submission{Professional: &scoring.ProfessionalScores{Mode: scoring.ModeScoring, Items: scoring.ItemList{{Name: "其他", Score: 1}}}},
			want: ErrInvalidInput,
		},
		{
			name: "client claims rating for scoring section",
			sub:  scoring.Submission{Professional: &scoring.ProfessionalScores{Mode: scoring.ModeRating, Items: scoring.ItemList{{Name: "沟通能力", Grade: "A", Score: 99}}}},
			want: ErrScoreOutOfRange,
		},
		{
			name: "grade score mismatch",
			sub:  scoring.Submission{General: &scoring.ItemList{{Name: "团队协作", Grade: "B", Score: 10}}},
			want: ErrScoreOutOfRange,
		},
		{
			name: "unknown grade",
			sub:  scoring.Submission{General: &scoring.ItemList{{Name: "团队协作", Grade: "Z", Score: 10}}},
			want: ErrInvalidInput,
		},
		{
			name: "product above max",
			sub:  scoring.Submission{Product: ptr(31)},
			want: ErrScoreOutOfRange,
		},
		{
			name: "negative product",
			sub:  scoring.Submission{Product: ptr(-1)},
			want: ErrScoreOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRanges(table, &tt.sub)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestSubmit_RejectsInvalidIdentifiers(t *testing.T) {
	s := NewScoreService(nil, nil, nil, zap.NewNop())
	viewer := scoring.Viewer{EmpID: "SA", IsSA: true}

	for _, sub := range []scoring.Submission{
		{TableID: "1"},
		{EmpID: "E9"},
		{EmpID: "E 9", TableID: "1"},
		{EmpID: "E9' OR '1'='1", TableID: "1"},
	} {
		_, err := s.Submit(context.Background(), viewer, &sub)
		assert.ErrorIs(t, err, ErrInvalidInput, sub.EmpID)
	}
}
