package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/model"
	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
)

// ── 测试辅助 ──

func setupTestStudyService() (StudyService, *mocks) {
	repo, m := newMockRepository()
	s1 := m.study.add("S1")
	m.study.add("S2")
	m.study.sites[s1.ID] = []model.StudySite{
		{StudyID: s1.ID, SiteID: 1, Code: "S1", Site: &model.Site{ID: 1, Code: "CMH"}},
		{StudyID: s1.ID, SiteID: 2, Code: "S1", Site: &model.Site{ID: 2, Code: "ZHH"}},
	}
	m.scantype.types["T1"] = &model.Scantype{ID: 1, Name: "T1"}
	return NewStudyService(repo, zap.NewNop()), m
}

// ── GetStudies 测试 ──

func TestStudyService_GetStudies_All(t *testing.T) {
	svc, _ := setupTestStudyService()

	result, err := svc.GetStudies(context.Background(), &dto.StudyListRequest{}, false)
	if err != nil {
		t.Fatalf("GetStudies 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("期望 2 个研究，实际=%d", len(result))
	}
}

func TestStudyService_GetStudies_ByName(t *testing.T) {
	svc, m := setupTestStudyService()

	result, err := svc.GetStudies(context.Background(), &dto.StudyListRequest{Name: "s1", Tag: "ignored"}, false)
	if err != nil {
		t.Fatalf("GetStudies 应成功: %v", err)
	}
	if len(result) != 1 || result[0].Code != "S1" {
		t.Errorf("期望精确匹配 S1，实际=%+v", result)
	}
	if m.study.lastTag != "" {
		t.Error("指定 name 时不应按标签查询")
	}
}

func TestStudyService_GetStudies_MissingWithoutCreate(t *testing.T) {
	svc, m := setupTestStudyService()

	result, err := svc.GetStudies(context.Background(), &dto.StudyListRequest{Name: "NEW"}, false)
	if err != nil {
		t.Fatalf("不存在的研究应返回空列表: %v", err)
	}
	if len(result) != 0 || len(m.study.studies) != 2 {
		t.Errorf("不应创建研究，结果=%v 研究数=%d", result, len(m.study.studies))
	}
}

func TestStudyService_GetStudies_Create(t *testing.T) {
	svc, m := setupTestStudyService()
	ctx := context.Background()

	first, err := svc.GetStudies(ctx, &dto.StudyListRequest{Name: "new"}, true)
	if err != nil {
		t.Fatalf("GetStudies 应成功: %v", err)
	}
	second, err := svc.GetStudies(ctx, &dto.StudyListRequest{Name: "NEW"}, true)
	if err != nil {
		t.Fatalf("GetStudies 应成功: %v", err)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("重复创建应返回同一研究，first=%+v second=%+v", first, second)
	}
	if len(m.study.studies) != 3 {
		t.Errorf("期望只新增 1 个研究，实际研究数=%d", len(m.study.studies))
	}
}

func TestStudyService_GetStudies_ByTagSite(t *testing.T) {
	svc, m := setupTestStudyService()
	m.study.byTagSite = []model.Study{*m.study.studies["S1"]}

	result, err := svc.GetStudies(context.Background(), &dto.StudyListRequest{Tag: " SPN ", Site: "CMH"}, false)
	if err != nil {
		t.Fatalf("GetStudies 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("期望 1 个研究，实际=%d", len(result))
	}
	if m.study.lastTag != "SPN" || m.study.lastSite != "CMH" {
		t.Errorf("标签与站点应一起传给仓储，实际 tag=%q site=%q", m.study.lastTag, m.study.lastSite)
	}
}

// ── GetStudy 测试 ──

func TestStudyService_GetStudy_WithSites(t *testing.T) {
	svc, _ := setupTestStudyService()

	result, err := svc.GetStudy(context.Background(), "S1")
	if err != nil {
		t.Fatalf("GetStudy 应成功: %v", err)
	}
	if len(result.Sites) != 2 || result.Sites[1].SiteCode != "ZHH" {
		t.Errorf("期望包含 2 个站点，实际=%+v", result.Sites)
	}
}

func TestStudyService_GetStudy_NotFound(t *testing.T) {
	svc, _ := setupTestStudyService()

	_, err := svc.GetStudy(context.Background(), "NOPE")
	if !errors.Is(err, ErrStudyNotFound) || !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("期望 ErrStudyNotFound，实际: %v", err)
	}
}

// ── GetScantypes 测试 ──

func TestStudyService_GetScantypes(t *testing.T) {
	svc, m := setupTestStudyService()
	ctx := context.Background()

	all, err := svc.GetScantypes(ctx, "", false)
	if err != nil || len(all) != 1 {
		t.Fatalf("期望 1 个扫描类型，实际=%v err=%v", all, err)
	}

	missing, err := svc.GetScantypes(ctx, "DTI", false)
	if err != nil || len(missing) != 0 {
		t.Errorf("不存在且不创建时应返回空列表，实际=%v err=%v", missing, err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.GetScantypes(ctx, "DTI", true); err != nil {
			t.Fatalf("GetScantypes 应成功: %v", err)
		}
	}
	if m.scantype.created != 1 {
		t.Errorf("重复 create 应只创建一次，实际=%d", m.scantype.created)
	}
}

// ── GetRedcapConfig 测试 ──

func TestStudyService_GetRedcapConfig_NonIntegerProject(t *testing.T) {
	svc, _ := setupTestStudyService()

	_, err := svc.GetRedcapConfig(context.Background(), "abc", "scan_form", "https://redcap.example.org", true)
	if !pkgerrors.IsValidation(err) {
		t.Errorf("期望 ValidationError，实际: %v", err)
	}
}

func TestStudyService_GetRedcapConfig(t *testing.T) {
	svc, _ := setupTestStudyService()
	ctx := context.Background()
	url := "https://redcap.example.org"

	if _, err := svc.GetRedcapConfig(ctx, "42", "scan_form", url, false); !errors.Is(err, ErrRedcapNotFound) {
		t.Fatalf("未创建时期望 ErrRedcapNotFound，实际: %v", err)
	}
	created, err := svc.GetRedcapConfig(ctx, " 42 ", "scan_form", url, true)
	if err != nil {
		t.Fatalf("GetRedcapConfig 应成功: %v", err)
	}
	found, err := svc.GetRedcapConfig(ctx, "42", "scan_form", url, false)
	if err != nil {
		t.Fatalf("创建后应能查询: %v", err)
	}
	if created.ID != found.ID || found.Project != 42 {
		t.Errorf("期望同一配置，created=%+v found=%+v", created, found)
	}
}
