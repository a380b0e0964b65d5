package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIError 后端返回的非成功响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("perfeval api: status %d", e.Status)
	}
	return fmt.Sprintf("perfeval api: %s (status: %d)", e.Message, e.Status)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// TableSummary 考核表列表项
type TableSummary struct {
	ID   scoring.TableID `json:"id"`
	Name string          `json:"name"`
}

// Department 部门
type Department struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SubmitResult 评分提交结果
type SubmitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Client 绩效评分后端 API 客户端。
// 请求不重试，失败直接返回给调用方。
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New 创建客户端，token 为空时不带 Authorization 头
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		httpClient.SetAuthToken(token)
	}
	return &Client{httpClient: httpClient, logger: logger}
}

func (c *Client) do(ctx context.Context, req *resty.Request, method, path string, result any) error {
	var eb errorBody
	resp, err := req.
		SetContext(ctx).
		SetResult(result).
		SetError(&eb).
		Execute(method, path)
	if err != nil {
		c.logger.Error("请求评分服务失败", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("request %s: %w", path, err)
	}
	if resp.IsError() {
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		c.logger.Warn("评分服务返回错误",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("msg", msg),
		)
		return &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return nil
}

// Me 当前登录用户的评分身份
func (c *Client) Me(ctx context.Context) (scoring.Viewer, error) {
	var out struct {
		UserInfo scoring.Viewer `json:"userinfo"`
	}
	if err := c.do(ctx, c.httpClient.R(), http.MethodGet, "/api/me", &out); err != nil {
		return scoring.Viewer{}, err
	}
	return out.UserInfo, nil
}

// EmployeeInfo 被评分员工信息
func (c *Client) EmployeeInfo(ctx context.Context, empID string) (scoring.Employee, error) {
	var out scoring.Employee
	req := c.httpClient.R().SetQueryParam("emp_id", empID)
	if err := c.do(ctx, req, http.MethodGet, "/get_employee_info", &out); err != nil {
		return scoring.Employee{}, err
	}
	return out, nil
}

// EvaluationTable 考核表
func (c *Client) EvaluationTable(ctx context.Context, tableID string) (scoring.EvaluationTable, error) {
	var out scoring.EvaluationTable
	req := c.httpClient.R().SetQueryParam("table_id", tableID)
	if err := c.do(ctx, req, http.MethodGet, "/get_evaluation_table", &out); err != nil {
		return scoring.EvaluationTable{}, err
	}
	return out, nil
}

// SubmitScore 提交评分。服务端返回 success=false 时也视为错误。
func (c *Client) SubmitScore(ctx context.Context, sub *scoring.Submission) (*SubmitResult, error) {
	var out SubmitResult
	if err := c.do(ctx, c.httpClient.R().SetBody(sub), http.MethodPost, "/submit_score", &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return &out, &APIError{Status: http.StatusOK, Message: out.Message}
	}
	return &out, nil
}

// TableList 考核表列表
func (c *Client) TableList(ctx context.Context) ([]TableSummary, error) {
	var out []TableSummary
	if err := c.do(ctx, c.httpClient.R(), http.MethodGet, "/showtablelist", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StaffChecked 评分人可评分的员工
func (c *Client) StaffChecked(ctx context.Context, viewer scoring.Viewer) ([]scoring.Employee, error) {
	var out []scoring.Employee
	body := map[string]any{"userinfo": viewer}
	if err := c.do(ctx, c.httpClient.R().SetBody(body), http.MethodPost, "/staffChecked", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Departments 部门列表，兼容数组与 {data: [...]} 两种响应
func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	var raw json.RawMessage
	if err := c.do(ctx, c.httpClient.R(), http.MethodGet, "/showalldepartment", &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	var out []Department
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode departments: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Data []Department `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode departments: %w", err)
	}
	return wrapped.Data, nil
}
