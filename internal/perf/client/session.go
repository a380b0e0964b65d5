package client

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/bitfantasy/perfeval/internal/scoring"
	"go.uber.org/zap"
)

// 提示文案
const (
	MsgMissingParams  = "缺少必要参数"
	MsgLoadFailed     = "加载评分信息失败，请返回重试"
	MsgSubmitOK       = "评分提交成功"
	MsgSubmitRejected = "评分提交失败: "
	MsgSubmitError    = "提交评分时发生错误，请重试"
	msgUnknownError   = "未知错误"
)

var (
	// ErrMissingParams 缺少 emp_id 或 table_id
	ErrMissingParams = errors.New("missing emp_id or table_id")
	// ErrNotOpened 评分页面尚未加载
	ErrNotOpened = errors.New("scoring session is not opened")
)

// Notifier 面向评分人的提示与跳转
type Notifier interface {
	Alert(msg string)
	Redirect(location string)
}

// Session 一次评分页面会话：加载员工与考核表、挂载表单、提交评分
type Session struct {
	client   *Client
	notifier Notifier
	listPage string
	logger   *zap.Logger

	empID   string
	tableID string
	form    *scoring.Form
}

// NewSession 创建会话，listPage 为评分列表页地址
func NewSession(c *Client, notifier Notifier, listPage string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{client: c, notifier: notifier, listPage: listPage, logger: logger}
}

// Open 按 emp_id 与 table_id 加载评分页面。
// 参数缺失时提示并返回列表页，不发出任何请求。
func (s *Session) Open(ctx context.Context, query url.Values) error {
	empID := strings.TrimSpace(query.Get("emp_id"))
	tableID := strings.TrimSpace(query.Get("table_id"))
	if empID == "" || tableID == "" {
		s.notifier.Alert(MsgMissingParams)
		s.notifier.Redirect(s.listPage)
		return ErrMissingParams
	}

	viewer, err := s.client.Me(ctx)
	if err != nil {
		return s.loadFailed(err)
	}
	employee, err := s.client.EmployeeInfo(ctx, empID)
	if err != nil {
		return s.loadFailed(err)
	}
	table, err := s.client.EvaluationTable(ctx, tableID)
	if err != nil {
		return s.loadFailed(err)
	}

	form := scoring.NewForm(scoring.Context{Table: table, Employee: employee, Viewer: viewer}, s.logger)
	form.Render()
	form.Mount()

	if s.form != nil {
		s.form.Unmount()
	}
	s.empID, s.tableID, s.form = empID, tableID, form
	s.logger.Info("评分页面已加载",
		zap.String("emp_id", empID),
		zap.String("table_id", tableID),
		zap.String("viewer", viewer.EmpID),
	)
	return nil
}

func (s *Session) loadFailed(err error) error {
	s.logger.Error("初始化评分页面失败", zap.Error(err))
	s.notifier.Alert(MsgLoadFailed)
	return err
}

// Form 当前挂载的表单，未加载时为 nil
func (s *Session) Form() *scoring.Form {
	return s.form
}

// Submission 按当前表单状态组装提交数据
func (s *Session) Submission() (*scoring.Submission, error) {
	if s.form == nil {
		return nil, ErrNotOpened
	}
	return scoring.Assemble(s.form, s.empID, s.tableID), nil
}

// Submit 组装并提交评分，结果只提示一次。
// 成功后返回列表页；失败时停留在当前页面，可再次提交。
func (s *Session) Submit(ctx context.Context) error {
	sub, err := s.Submission()
	if err != nil {
		return err
	}

	if _, err := s.client.SubmitScore(ctx, sub); err != nil {
		s.logger.Error("提交评分错误", zap.String("emp_id", sub.EmpID), zap.Error(err))
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Message != "":
			s.notifier.Alert(MsgSubmitRejected + apiErr.Message)
		case errors.As(err, &apiErr) && apiErr.Status < 300:
			s.notifier.Alert(MsgSubmitRejected + msgUnknownError)
		default:
			s.notifier.Alert(MsgSubmitError)
		}
		return err
	}

	s.notifier.Alert(MsgSubmitOK)
	s.notifier.Redirect(s.listPage)
	return nil
}
