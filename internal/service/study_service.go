package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/model"
	"github.com/tomwright01/dashboard/internal/repository"
	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
)

// StudyService 研究与参考数据业务接口
//
// 参考数据（研究、扫描类型、REDCap 配置）支持 create-if-missing：
// 插入在单个事务中完成，并发创建同键记录时由唯一约束裁决，失败方回退为普通查询。
type StudyService interface {
	// GetStudies 无条件时返回全部研究；指定 name 时忽略其他条件，只做精确匹配
	GetStudies(ctx context.Context, req *dto.StudyListRequest, create bool) ([]dto.StudyResponse, error)
	// GetStudy 按研究代码获取单个研究（含站点）
	GetStudy(ctx context.Context, code string) (*dto.StudyResponse, error)
	// GetScantypes tag 为空时返回全部扫描类型
	GetScantypes(ctx context.Context, tag string, create bool) ([]dto.ScantypeResponse, error)
	// GetRedcapConfig project 必须可转换为整数
	GetRedcapConfig(ctx context.Context, project, instrument, url string, create bool) (*dto.RedcapConfigResponse, error)
}

type studyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudyService 创建 StudyService 实例
func NewStudyService(repo *repository.Repository, logger *zap.Logger) StudyService {
	return &studyService{repo: repo, logger: logger}
}

// ────────────────────── GetStudies ──────────────────────

func (s *studyService) GetStudies(ctx context.Context, req *dto.StudyListRequest, create bool) ([]dto.StudyResponse, error) {
	name := strings.TrimSpace(req.Name)
	tag := strings.TrimSpace(req.Tag)
	site := strings.TrimSpace(req.Site)

	var (
		studies []model.Study
		err     error
	)
	switch {
	case name != "":
		return s.getStudyByName(ctx, name, create)
	case tag != "" || site != "":
		studies, err = s.repo.Study.ListByTagSite(ctx, tag, site)
	default:
		studies, err = s.repo.Study.List(ctx)
	}
	if err != nil {
		s.logger.Error("查询研究列表失败", zap.String("tag", tag), zap.String("site", site), zap.Error(err))
		return nil, err
	}

	out := make([]dto.StudyResponse, 0, len(studies))
	for _, st := range studies {
		out = append(out, toStudyResponse(&st, nil))
	}
	return out, nil
}

func (s *studyService) getStudyByName(ctx context.Context, name string, create bool) ([]dto.StudyResponse, error) {
	var (
		study *model.Study
		err   error
	)
	if create {
		study, err = s.repo.Study.GetOrCreate(ctx, name)
	} else {
		study, err = s.repo.Study.GetByCode(ctx, name)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.StudyResponse{}, nil
		}
		s.logger.Error("查询研究失败", zap.String("name", name), zap.Bool("create", create), zap.Error(err))
		return nil, err
	}
	return []dto.StudyResponse{toStudyResponse(study, nil)}, nil
}

// ────────────────────── GetStudy ──────────────────────

func (s *studyService) GetStudy(ctx context.Context, code string) (*dto.StudyResponse, error) {
	study, err := s.repo.Study.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudyNotFound
		}
		s.logger.Error("查询研究失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	links, err := s.repo.Study.ListSites(ctx, study.ID)
	if err != nil {
		s.logger.Error("查询研究站点失败", zap.Uint("study_id", study.ID), zap.Error(err))
		return nil, err
	}
	resp := toStudyResponse(study, links)
	return &resp, nil
}

// ────────────────────── GetScantypes ──────────────────────

func (s *studyService) GetScantypes(ctx context.Context, tag string, create bool) ([]dto.ScantypeResponse, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		types, err := s.repo.Scantype.List(ctx)
		if err != nil {
			s.logger.Error("查询扫描类型失败", zap.Error(err))
			return nil, err
		}
		out := make([]dto.ScantypeResponse, 0, len(types))
		for _, t := range types {
			out = append(out, dto.ScantypeResponse{ID: t.ID, Name: t.Name})
		}
		return out, nil
	}

	var (
		st  *model.Scantype
		err error
	)
	if create {
		st, err = s.repo.Scantype.GetOrCreate(ctx, tag)
	} else {
		st, err = s.repo.Scantype.GetByName(ctx, tag)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.ScantypeResponse{}, nil
		}
		s.logger.Error("查询扫描类型失败", zap.String("tag", tag), zap.Error(err))
		return nil, err
	}
	return []dto.ScantypeResponse{{ID: st.ID, Name: st.Name}}, nil
}

// ────────────────────── GetRedcapConfig ──────────────────────

func (s *studyService) GetRedcapConfig(ctx context.Context, project, instrument, url string, create bool) (*dto.RedcapConfigResponse, error) {
	pid, err := strconv.Atoi(strings.TrimSpace(project))
	if err != nil {
		return nil, pkgerrors.NewValidationError("project", project, "必须为整数")
	}

	var cfg *model.RedcapConfig
	if create {
		cfg, err = s.repo.Redcap.GetOrCreate(ctx, pid, instrument, url)
	} else {
		cfg, err = s.repo.Redcap.Find(ctx, pid, instrument, url)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRedcapNotFound
		}
		s.logger.Error("查询 REDCap 配置失败", zap.Int("project", pid), zap.String("instrument", instrument), zap.Error(err))
		return nil, err
	}
	return &dto.RedcapConfigResponse{
		ID:         cfg.ID,
		Project:    cfg.Project,
		Instrument: cfg.Instrument,
		URL:        cfg.URL,
	}, nil
}

// ── 辅助函数 ──

func toStudyResponse(st *model.Study, links []model.StudySite) dto.StudyResponse {
	resp := dto.StudyResponse{
		ID:          st.ID,
		Code:        st.Code,
		Name:        st.Name,
		Nickname:    st.Nickname,
		Description: st.Description,
	}
	for _, l := range links {
		site := dto.StudySiteResponse{SiteID: l.SiteID, Tag: l.Code}
		if l.Site != nil {
			site.SiteCode = l.Site.Code
		}
		resp.Sites = append(resp.Sites, site)
	}
	return resp
}
