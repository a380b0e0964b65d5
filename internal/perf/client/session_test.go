package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDescription = `{"专业职能": {"分数": 40, "评分方式": "打分", "评分项": [{"沟通能力": 20}]}, "通用职能": {"分数": 30, "评分项": [{"团队协作": 10}]}, "产品表现": {"分数": 30}}`

type recorder struct {
	alerts    []string
	redirects []string
}

func (r *recorder) Alert(msg string)         { r.alerts = append(r.alerts, msg) }
func (r *recorder) Redirect(location string) { r.redirects = append(r.redirects, location) }

type fakeBackend struct {
	server   *httptest.Server
	requests int32
	auth     atomic.Value
	viewer   string
	submit   func(c *gin.Context, body []byte)
}

func newFakeBackend(t *testing.T, viewer string) *fakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fb := &fakeBackend{viewer: viewer}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		atomic.AddInt32(&fb.requests, 1)
		fb.auth.Store(c.GetHeader("Authorization"))
		c.Next()
	})
	r.GET("/api/me", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(`{"userinfo":`+fb.viewer+`}`))
	})
	r.GET("/get_employee_info", func(c *gin.Context) {
		if c.Query("emp_id") != "E9" {
			c.JSON(http.StatusNotFound, gin.H{"error": "员工不存在"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"emp_id": "E9", "emp_name": "张三", "immediate_leader": "E1", "directJudgeId": "E2"})
	})
	r.GET("/get_evaluation_table", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":          7,
			"name":        "2026 Q1 考核",
			"score_rule":  `[{"grade":"A","value":"10"},{"grade":"B","value":"7"}]`,
			"description": testDescription,
		})
	})
	r.POST("/submit_score", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		fb.submit(c, body)
	})
	r.GET("/showtablelist", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(`[{"id":3,"name":"年度考核"},{"id":"2","name":"季度考核"}]`))
	})
	r.GET("/showalldepartment", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{{"id": 1, "name": "研发部"}}})
	})
	r.POST("/staffChecked", func(c *gin.Context) {
		var req struct {
			UserInfo scoring.Viewer `json:"userinfo"`
		}
		_ = c.ShouldBindJSON(&req)
		c.JSON(http.StatusOK, []gin.H{{"emp_id": "E9", "emp_name": "张三", "immediate_leader": req.UserInfo.EmpID}})
	})

	fb.server = httptest.NewServer(r)
	t.Cleanup(fb.server.Close)
	return fb
}

func newTestSession(fb *fakeBackend) (*Session, *recorder) {
	rec := &recorder{}
	c := New(fb.server.URL, "test-token", 5*time.Second, zap.NewNop())
	return NewSession(c, rec, "/score_evaluation", zap.NewNop()), rec
}

func TestOpen_MissingParams(t *testing.T) {
	fb := newFakeBackend(t, `{"emp_id":"SA","isSA":true}`)
	s, rec := newTestSession(fb)

	for _, q := range []url.Values{
		{},
		{"emp_id": {"E9"}},
		{"table_id": {"7"}},
		{"emp_id": {" "}, "table_id": {"7"}},
	} {
		err := s.Open(context.Background(), q)
		assert.ErrorIs(t, err, ErrMissingParams)
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&fb.requests), "no request is issued")
	assert.Len(t, rec.alerts, 4)
	assert.Equal(t, MsgMissingParams, rec.alerts[0])
	assert.Equal(t, "/score_evaluation", rec.redirects[0])
	assert.Nil(t, s.Form())
}

func TestOpen_LoadFailure(t *testing.T) {
	fb := newFakeBackend(t, `{"emp_id":"SA","isSA":true}`)
	s, rec := newTestSession(fb)

	err := s.Open(context.Background(), url.Values{"emp_id": {"NOPE"}, "table_id": {"7"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "员工不存在", apiErr.Message)

	assert.Equal(t, []string{MsgLoadFailed}, rec.alerts)
	assert.Empty(t, rec.redirects)
	assert.Nil(t, s.Form())

	_, err = s.Submission()
	assert.ErrorIs(t, err, ErrNotOpened)
}

func TestSession_SuperAdminSubmit(t *testing.T) {
	fb := newFakeBackend(t, `{"emp_id":"SA","isSA":true}`)
	var submitted map[string]any
	fb.submit = func(c *gin.Context, body []byte) {
		_ = json.Unmarshal(body, &submitted)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": "rec-1"})
	}
	s, rec := newTestSession(fb)

	require.NoError(t, s.Open(context.Background(), url.Values{"emp_id": {"E9"}, "table_id": {"7"}}))
	assert.Equal(t, "Bearer test-token", fb.auth.Load())

	form := s.Form()
	require.NotNil(t, form)
	assert.Equal(t, "2026 Q1 考核", form.Title())
	require.NoError(t, form.EnterScore(scoring.Professional, "沟通能力", 30))
	require.NoError(t, form.Select(scoring.General, "团队协作", "B"))
	require.NoError(t, form.EnterScore(scoring.Product, "", 20))
	require.NoError(t, form.EnterBonus(1, "加班"))

	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, []string{MsgSubmitOK}, rec.alerts)
	assert.Equal(t, []string{"/score_evaluation"}, rec.redirects)

	require.NotNil(t, submitted)
	assert.Equal(t, "E9", submitted["emp_id"])
	assert.Equal(t, "7", submitted["table_id"])
	assert.Equal(t, 20.0, submitted["product"])
	assert.Equal(t, map[string]any{"score": 1.0, "reason": "加班"}, submitted["extraBonus"])

	prof := submitted["professional"].(map[string]any)
	assert.Equal(t, "打分", prof["mode"])
	items := prof["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, 20.0, items[0].(map[string]any)["score"], "entered score is clamped to criterion max")
}

func TestSession_ProductJudgeOnlySubmitsProduct(t *testing.T) {
	fb := newFakeBackend(t, `{"emp_id":"E2","isPJ":true}`)
	var submitted map[string]any
	fb.submit = func(c *gin.Context, body []byte) {
		_ = json.Unmarshal(body, &submitted)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
	s, _ := newTestSession(fb)

	require.NoError(t, s.Open(context.Background(), url.Values{"emp_id": {"E9"}, "table_id": {"7"}}))
	assert.ErrorIs(t, s.Form().Select(scoring.General, "团队协作", "A"), scoring.ErrSectionDisabled)
	require.NoError(t, s.Form().EnterScore(scoring.Product, "", 12))
	require.NoError(t, s.Submit(context.Background()))

	assert.Equal(t, 12.0, submitted["product"])
	assert.NotContains(t, submitted, "professional")
	assert.NotContains(t, submitted, "general")
	assert.NotContains(t, submitted, "details")
	assert.Equal(t, map[string]any{"score": nil, "reason": nil}, submitted["extraBonus"])
}

func TestSession_SubmitRejected(t *testing.T) {
	fb := newFakeBackend(t, `{"emp_id":"SA","isSA":true}`)
	s, rec := newTestSession(fb)
	require.NoError(t, s.Open(context.Background(), url.Values{"emp_id": {"E9"}, "table_id": {"7"}}))

	t.Run("server message", func(t *testing.T) {
		rec.alerts = nil
		fb.submit = func(c *gin.Context, _ []byte) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "无权评分"})
		}
		err := s.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, []string{MsgSubmitRejected + "无权评分"}, rec.alerts)
	})

	t.Run("success false without message", func(t *testing.T) {
		rec.alerts = nil
		fb.submit = func(c *gin.Context, _ []byte) {
			c.JSON(http.StatusOK, gin.H{"success": false})
		}
		require.Error(t, s.Submit(context.Background()))
		assert.Equal(t, []string{MsgSubmitRejected + "未知错误"}, rec.alerts)
	})

	t.Run("server error without body", func(t *testing.T) {
		rec.alerts = nil
		fb.submit = func(c *gin.Context, _ []byte) {
			c.Status(http.StatusBadGateway)
		}
		require.Error(t, s.Submit(context.Background()))
		assert.Equal(t, []string{MsgSubmitError}, rec.alerts)
	})

	assert.Empty(t, rec.redirects, "failed submissions stay on the page")
}

func TestSession_SubmitTransportError(t *testing.T) {
	fb := newFakeBackend(t, `{"emp_id":"SA","isSA":true}`)
	s, rec := newTestSession(fb)
	require.NoError(t, s.Open(context.Background(), url.Values{"emp_id": {"E9"}, "table_id": {"7"}}))

	fb.server.Close()
	require.Error(t, s.Submit(context.Background()))
	assert.Equal(t, []string{MsgSubmitError}, rec.alerts)
	assert.Empty(t, rec.redirects)
}

func TestClient_Listings(t *testing.T) {
	fb := newFakeBackend(t, `{"emp_id":"E1","isRJ":true}`)
	c := New(fb.server.URL, "", 5*time.Second, nil)
	ctx := context.Background()

	tables, err := c.TableList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TableSummary{{ID: "3", Name: "年度考核"}, {ID: "2", Name: "季度考核"}}, tables)
	assert.Equal(t, "", fb.auth.Load(), "no token configured")

	depts, err := c.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Department{{ID: 1, Name: "研发部"}}, depts)

	viewer, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, scoring.Viewer{EmpID: "E1", IsRJ: true}, viewer)

	staff, err := c.StaffChecked(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "E1", staff[0].ImmediateLeader)
}
