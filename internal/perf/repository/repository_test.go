package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bitfantasy/perfeval/internal/perf/entity"
	"github.com/bitfantasy/perfeval/internal/perf/testutil"
	"github.com/bitfantasy/perfeval/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_FindByID_NotFound(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE emp_id = \$1`).
		WillReturnRows(sqlmock.NewRows(testutil.EmployeeColumns))

	_, err := NewEmployeeRepository(db).FindByID(context.Background(), "X")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEmployeeRepository_FindByJudge(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	rows := sqlmock.NewRows(testutil.EmployeeColumns)
	testutil.EmployeeRow(rows, "E1", "张三", "L1", "", scoring.Viewer{})
	testutil.EmployeeRow(rows, "E2", "李四", "", "L1", scoring.Viewer{})
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE direct_judge_id = \$1 OR immediate_leader = \$2 ORDER BY emp_id`).
		WithArgs("L1", "L1").
		WillReturnRows(rows)

	items, err := NewEmployeeRepository(db).FindByJudge(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "L1", items[0].ImmediateLeader)
	assert.Equal(t, "L1", items[1].DirectJudgeID)
}

func TestEmployeeRepository_Search(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE department = \$1 AND emp_name LIKE \$2 ESCAPE '\\' ORDER BY emp_id`).
		WithArgs("研发部", "%张%").
		WillReturnRows(sqlmock.NewRows(testutil.EmployeeColumns))

	items, err := NewEmployeeRepository(db).Search(context.Background(), map[string]string{
		"department": "研发部",
		"name":       "张",
		"top_leader": "",
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEmployeeRepository_SearchEscapesWildcards(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	mock.ExpectQuery(`emp_name LIKE \$1 ESCAPE`).
		WithArgs(`%50\%\_a\\b%`).
		WillReturnRows(sqlmock.NewRows(testutil.EmployeeColumns))

	items, err := NewEmployeeRepository(db).Search(context.Background(), map[string]string{"name": `50%_a\b`})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEmployeeRepository_UpsertExisting(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE emp_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"emp_id", "emp_name", "created_at"}).AddRow("E1", "旧名", created))
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	emp := &entity.Employee{EmpID: "E1", EmpName: "新名", Position: "工程师", Department: "研发部"}
	isNew, err := NewEmployeeRepository(db).Upsert(context.Background(), emp)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created, emp.CreatedAt)
}

func TestCredentialRepository_FindByUsername(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "user_credentials" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "emp_id", "password_hash"}).AddRow("zhang", "E1", "$2a$10$x"))

	cred, err := NewCredentialRepository(db).FindByUsername(context.Background(), "zhang")
	require.NoError(t, err)
	assert.Equal(t, "E1", cred.EmpID)
	assert.Equal(t, "$2a$10$x", cred.PasswordHash)
}

func TestScoreRepository_FindLatest(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT DISTINCT ON \(emp_id, table_id, scorer_id\) \* FROM score_records`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "emp_id", "table_id", "scorer_id", "product", "general", "total", "created_at"}).
			AddRow("r1", "E1", 1, "SA", 25.0, nil, 25.0, now))

	items, err := NewScoreRepository(db).FindLatest(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, 25.0, *items[0].Product)
	assert.Nil(t, items[0].General)
}

func TestDepartmentRepository_FindAll(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "department" ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avgattendance"}).AddRow(1, "研发部", 0.97))

	items, err := NewDepartmentRepository(db).FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.Department{{ID: 1, Name: "研发部", AvgAttendance: 0.97}}, items)
}
