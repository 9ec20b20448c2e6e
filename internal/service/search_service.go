package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/model"
	"github.com/tomwright01/dashboard/internal/repository"
	"github.com/tomwright01/dashboard/internal/scanid"
	"github.com/tomwright01/dashboard/pkg/metrics"
)

// 解析器命中阶段，用于日志与指标
const (
	stageFilename = "filename"  // 扫描文件名子串匹配
	stageStrict   = "strict"    // 名称 + 会话序号
	stageNameOnly = "name_only" // 丢弃会话序号后仅按名称
	stageFuzzy    = "fuzzy"     // 解析失败，子串匹配
	stageNone     = "none"      // 所有阶段均无结果
)

// 解析失败时扫描的模糊匹配顺序
var fuzzyScanFields = []repository.ScanField{
	repository.ScanFieldName,
	repository.ScanFieldTimepoint,
	repository.ScanFieldTag,
	repository.ScanFieldDescription,
}

// SearchService 搜索栏业务接口：把用户输入解析为受试者、会话或扫描
type SearchService interface {
	// ResolveSessions 严格 → 放宽 → 模糊，逐级回退直到有结果
	ResolveSessions(ctx context.Context, text string) ([]dto.SessionResult, error)
	// ResolveScans 文件名 → 严格 → 放宽 → 名称/时间点/标签/描述模糊匹配
	ResolveScans(ctx context.Context, text string) ([]dto.ScanResult, error)
	// FindSubjects 时间点名称子串匹配
	FindSubjects(ctx context.Context, text string) ([]dto.SubjectResult, error)
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchService struct {
	repo       *repository.Repository
	maxResults int
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewSearchService 创建 SearchService 实例，maxResults<=0 表示不截断
func NewSearchService(repo *repository.Repository, maxResults int, m *metrics.Metrics, logger *zap.Logger) SearchService {
	return &searchService{repo: repo, maxResults: maxResults, metrics: m, logger: logger}
}

// ────────────────────── Sessions ──────────────────────

func (s *searchService) ResolveSessions(ctx context.Context, text string) ([]dto.SessionResult, error) {
	sessions, err := s.resolveSessions(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResult, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResult(sess))
	}
	return out, nil
}

func (s *searchService) resolveSessions(ctx context.Context, text string) ([]model.Session, error) {
	text = scanid.Normalize(text)
	if text == "" {
		return nil, nil
	}

	id, err := scanid.Parse(text)
	if err != nil {
		sessions, err := s.repo.Session.Search(ctx, text, s.maxResults)
		if err != nil {
			s.logger.Error("模糊查询会话失败", zap.String("text", text), zap.Error(err))
			return nil, err
		}
		s.record("sessions", stageFuzzy, text, len(sessions))
		return sessions, nil
	}

	name := id.SubjectID()
	if num, ok := id.SessionNum(); ok {
		sessions, err := s.repo.Session.FindByName(ctx, name, &num, s.maxResults)
		if err != nil {
			s.logger.Error("查询会话失败", zap.String("name", name), zap.Int("num", num), zap.Error(err))
			return nil, err
		}
		if len(sessions) > 0 {
			s.record("sessions", stageStrict, text, len(sessions))
			return sessions, nil
		}
	}

	// 不存在的会话序号不能屏蔽仅按名称的匹配
	sessions, err := s.repo.Session.FindByName(ctx, name, nil, s.maxResults)
	if err != nil {
		s.logger.Error("查询会话失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	s.record("sessions", stageNameOnly, text, len(sessions))
	return sessions, nil
}

// ────────────────────── Scans ──────────────────────

func (s *searchService) ResolveScans(ctx context.Context, text string) ([]dto.ScanResult, error) {
	scans, err := s.resolveScans(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ScanResult, 0, len(scans))
	for _, scan := range scans {
		out = append(out, toScanResult(scan))
	}
	return out, nil
}

func (s *searchService) resolveScans(ctx context.Context, text string) ([]model.Scan, error) {
	text = scanid.Normalize(text)
	if text == "" {
		return nil, nil
	}

	if fn, err := scanid.ParseFilename(text); err == nil {
		scans, err := s.repo.Scan.Search(ctx, repository.ScanFieldName, fn.ScanName(), s.maxResults)
		if err != nil {
			s.logger.Error("按文件名查询扫描失败", zap.String("name", fn.ScanName()), zap.Error(err))
			return nil, err
		}
		s.record("scans", stageFilename, text, len(scans))
		return scans, nil
	}

	if id, err := scanid.Parse(text); err == nil {
		timepoint := id.SubjectID()
		if num, ok := id.SessionNum(); ok {
			scans, err := s.repo.Scan.FindByTimepoint(ctx, timepoint, &num, s.maxResults)
			if err != nil {
				s.logger.Error("按时间点查询扫描失败", zap.String("timepoint", timepoint), zap.Error(err))
				return nil, err
			}
			if len(scans) > 0 {
				s.record("scans", stageStrict, text, len(scans))
				return scans, nil
			}
		}
		scans, err := s.repo.Scan.FindByTimepoint(ctx, timepoint, nil, s.maxResults)
		if err != nil {
			s.logger.Error("按时间点查询扫描失败", zap.String("timepoint", timepoint), zap.Error(err))
			return nil, err
		}
		s.record("scans", stageNameOnly, text, len(scans))
		return scans, nil
	}

	for _, field := range fuzzyScanFields {
		scans, err := s.repo.Scan.Search(ctx, field, text, s.maxResults)
		if err != nil {
			s.logger.Error("模糊查询扫描失败", zap.Stringer("field", field), zap.Error(err))
			return nil, err
		}
		if len(scans) > 0 {
			s.record("scans", stageFuzzy+"_"+field.String(), text, len(scans))
			return scans, nil
		}
	}
	s.record("scans", stageFuzzy, text, 0)
	return nil, nil
}

// ────────────────────── Subjects ──────────────────────

func (s *searchService) FindSubjects(ctx context.Context, text string) ([]dto.SubjectResult, error) {
	text = scanid.Normalize(text)
	if text == "" {
		return []dto.SubjectResult{}, nil
	}

	tps, err := s.repo.Timepoint.Search(ctx, text, s.maxResults)
	if err != nil {
		s.logger.Error("查询受试者失败", zap.String("text", text), zap.Error(err))
		return nil, err
	}
	out := make([]dto.SubjectResult, 0, len(tps))
	for _, tp := range tps {
		out = append(out, dto.SubjectResult{
			Name:      tp.Name,
			BidsName:  tp.BidsName,
			IsPhantom: tp.IsPhantom,
			SiteID:    tp.SiteID,
		})
	}
	return out, nil
}

// ────────────────────── Search ──────────────────────

func (s *searchService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	resp := &dto.SearchResponse{
		Query:    scanid.Normalize(req.Query),
		Subjects: []dto.SubjectResult{},
		Sessions: []dto.SessionResult{},
		Scans:    []dto.ScanResult{},
	}
	kind := req.GetType()

	var err error
	if kind == dto.SearchAll || kind == dto.SearchSubjects {
		if resp.Subjects, err = s.FindSubjects(ctx, req.Query); err != nil {
			return nil, err
		}
	}
	if kind == dto.SearchAll || kind == dto.SearchSessions {
		if resp.Sessions, err = s.ResolveSessions(ctx, req.Query); err != nil {
			return nil, err
		}
	}
	if kind == dto.SearchAll || kind == dto.SearchScans {
		if resp.Scans, err = s.ResolveScans(ctx, req.Query); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// ── 辅助函数 ──

func (s *searchService) record(kind, stage, text string, n int) {
	if n == 0 {
		stage = stageNone
	}
	s.metrics.RecordSearchStage(kind, stage)
	s.logger.Debug("搜索完成",
		zap.String("kind", kind),
		zap.String("stage", stage),
		zap.String("text", text),
		zap.Int("results", n),
	)
}

func toSessionResult(sess model.Session) dto.SessionResult {
	return dto.SessionResult{ID: sess.ID, Name: sess.Name, Num: sess.Num}
}

func toScanResult(scan model.Scan) dto.ScanResult {
	return dto.ScanResult{
		ID:          scan.ID,
		Name:        scan.Name,
		Timepoint:   scan.Timepoint,
		Repeat:      scan.Repeat,
		Tag:         scan.Tag,
		Description: scan.Description,
	}
}
