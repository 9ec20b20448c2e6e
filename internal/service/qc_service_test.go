package service

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/model"
	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
)

// ── 测试辅助 ──

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func setupTestQCService() (QCService, *mocks) {
	repo, m := newMockRepository()
	m.qc.records = []model.QCRecord{
		{Name: "SCAN_APPROVED", Approved: boolPtr(true)},
		{Name: "SCAN_FLAGGED", Approved: boolPtr(true), Comment: strPtr("slight motion")},
		{Name: "SCAN_BLACKLISTED", Approved: boolPtr(false), Comment: strPtr("motion")},
		{Name: "SCAN_NEW"},
	}
	return NewQCService(repo, nil, zap.NewNop()), m
}

func qcNames(records []dto.QCRecordResponse) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

// ── GetScanQC 测试 ──

func TestQCService_GetScanQC_ExcludeBlacklisted(t *testing.T) {
	svc, m := setupTestQCService()
	m.qc.records = []model.QCRecord{{Name: "SCAN_BLACKLISTED", Approved: boolPtr(false), Comment: strPtr("motion")}}

	result, err := svc.GetScanQC(context.Background(), &dto.QCQueryRequest{Blacklisted: boolPtr(false)})
	if err != nil {
		t.Fatalf("GetScanQC 应成功: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("排除黑名单后应无结果，实际=%v", qcNames(result))
	}
}

func TestQCService_GetScanQC_Defaults(t *testing.T) {
	svc, m := setupTestQCService()

	result, err := svc.GetScanQC(context.Background(), &dto.QCQueryRequest{})
	if err != nil {
		t.Fatalf("GetScanQC 应成功: %v", err)
	}
	want := []string{"SCAN_APPROVED", "SCAN_BLACKLISTED", "SCAN_FLAGGED"}
	if got := qcNames(result); !reflect.DeepEqual(got, want) {
		t.Errorf("默认应返回全部已审核记录，期望=%v 实际=%v", want, got)
	}
	if m.qc.lastQuery.IncludePhantoms {
		t.Error("默认不应包含体模")
	}
}

func TestQCService_GetScanQC_IncludeNew(t *testing.T) {
	svc, _ := setupTestQCService()

	result, err := svc.GetScanQC(context.Background(), &dto.QCQueryRequest{IncludeNew: true})
	if err != nil {
		t.Fatalf("GetScanQC 应成功: %v", err)
	}
	if len(result) != 4 {
		t.Errorf("包含未审核时应返回 4 条，实际=%v", qcNames(result))
	}
}

func TestQCService_GetScanQC_Status(t *testing.T) {
	svc, _ := setupTestQCService()

	result, err := svc.GetScanQC(context.Background(), &dto.QCQueryRequest{
		Approved:    boolPtr(false),
		Blacklisted: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("GetScanQC 应成功: %v", err)
	}
	if len(result) != 1 || result[0].Name != "SCAN_FLAGGED" {
		t.Fatalf("期望只返回标记记录，实际=%v", qcNames(result))
	}
	if result[0].Status != string(model.QCFlagged) {
		t.Errorf("期望 Status=%s，实际=%s", model.QCFlagged, result[0].Status)
	}
}

// 每个状态开关排除的集合互不重叠，且所有组合的结果恰好是对应状态的并集
func TestQCService_GetScanQC_TogglesPartition(t *testing.T) {
	svc, _ := setupTestQCService()
	byState := map[string]string{
		"approved":    "SCAN_APPROVED",
		"flagged":     "SCAN_FLAGGED",
		"blacklisted": "SCAN_BLACKLISTED",
	}

	for mask := 1; mask < 8; mask++ {
		req := &dto.QCQueryRequest{
			Approved:    boolPtr(mask&1 != 0),
			Flagged:     boolPtr(mask&2 != 0),
			Blacklisted: boolPtr(mask&4 != 0),
		}
		var want []string
		if *req.Approved {
			want = append(want, byState["approved"])
		}
		if *req.Flagged {
			want = append(want, byState["flagged"])
		}
		if *req.Blacklisted {
			want = append(want, byState["blacklisted"])
		}
		sort.Strings(want)

		result, err := svc.GetScanQC(context.Background(), req)
		if err != nil {
			t.Fatalf("mask=%d GetScanQC 应成功: %v", mask, err)
		}
		if got := qcNames(result); !reflect.DeepEqual(got, want) {
			t.Errorf("mask=%d 期望=%v 实际=%v", mask, want, got)
		}
	}
}

func TestQCService_GetScanQC_NothingRequested(t *testing.T) {
	svc, m := setupTestQCService()

	_, err := svc.GetScanQC(context.Background(), &dto.QCQueryRequest{
		Approved:    boolPtr(false),
		Flagged:     boolPtr(false),
		Blacklisted: boolPtr(false),
	})
	if !pkgerrors.IsValidation(err) {
		t.Fatalf("全部状态关闭时应返回 ValidationError，实际: %v", err)
	}
	if m.qc.calls != 0 {
		t.Error("无效请求不应查询数据库")
	}
}

func TestQCService_GetScanQC_OnlyNew(t *testing.T) {
	svc, _ := setupTestQCService()

	result, err := svc.GetScanQC(context.Background(), &dto.QCQueryRequest{
		Approved:    boolPtr(false),
		Flagged:     boolPtr(false),
		Blacklisted: boolPtr(false),
		IncludeNew:  true,
	})
	if err != nil {
		t.Fatalf("仅包含未审核时应成功: %v", err)
	}
	if got := qcNames(result); !reflect.DeepEqual(got, []string{"SCAN_NEW"}) {
		t.Errorf("期望只返回未审核记录，实际=%v", got)
	}
}

func TestQCService_GetScanQC_FilterValues(t *testing.T) {
	svc, m := setupTestQCService()
	uid := uint(7)

	_, err := svc.GetScanQC(context.Background(), &dto.QCQueryRequest{
		Study:   []string{"S1, S2"},
		Site:    []string{"CMH", ""},
		Tag:     []string{"T1"},
		Comment: []string{"motion, severe; ghosting"},
		UserID:  &uid,
		Sort:    true,
	})
	if err != nil {
		t.Fatalf("GetScanQC 应成功: %v", err)
	}
	q := m.qc.lastQuery
	if !reflect.DeepEqual(q.Studies, []string{"S1", "S2"}) {
		t.Errorf("研究应按逗号拆分，实际=%v", q.Studies)
	}
	if !reflect.DeepEqual(q.Sites, []string{"CMH"}) {
		t.Errorf("空站点应被忽略，实际=%v", q.Sites)
	}
	if !reflect.DeepEqual(q.Comments, []string{"motion, severe", "ghosting"}) {
		t.Errorf("备注应按分号拆分，实际=%v", q.Comments)
	}
	if q.UserID == nil || *q.UserID != 7 || !q.Sort {
		t.Errorf("user_id 与 sort 应透传，实际=%+v", q)
	}
}

// ── OutstandingReviews 测试 ──

func TestQCService_OutstandingReviews(t *testing.T) {
	svc, m := setupTestQCService()

	result, err := svc.OutstandingReviews(context.Background(), &dto.OutstandingRequest{Study: []string{"S1"}})
	if err != nil {
		t.Fatalf("OutstandingReviews 应成功: %v", err)
	}
	if got := qcNames(result); !reflect.DeepEqual(got, []string{"SCAN_NEW"}) {
		t.Errorf("期望只返回未审核记录，实际=%v", got)
	}
	if !m.qc.lastQuery.Sort {
		t.Error("待审核列表应按名称排序")
	}
}
