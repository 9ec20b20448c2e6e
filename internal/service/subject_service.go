package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/model"
	"github.com/tomwright01/dashboard/internal/repository"
)

// SubjectService 受试者、会话与扫描的精确查询
type SubjectService interface {
	GetSession(ctx context.Context, name string, num int) (*dto.SessionResult, error)
	// GetTimepoint 按时间点名称查找；bidsSession 非空时 name 视为 BIDS 名称，study 可进一步限定所属研究
	GetTimepoint(ctx context.Context, name, bidsSession, study string) (*dto.TimepointResponse, error)
	// GetStudyTimepoints 研究下的时间点名称，默认不含体模
	GetStudyTimepoints(ctx context.Context, study string, req *dto.TimepointListRequest) ([]string, error)
	GetScan(ctx context.Context, req *dto.ScanLookupRequest) ([]dto.ScanResult, error)
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

func (s *subjectService) GetSession(ctx context.Context, name string, num int) (*dto.SessionResult, error) {
	sess, err := s.repo.Session.Get(ctx, strings.TrimSpace(name), num)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询会话失败", zap.String("name", name), zap.Int("num", num), zap.Error(err))
		return nil, err
	}
	res := toSessionResult(*sess)
	return &res, nil
}

func (s *subjectService) GetTimepoint(ctx context.Context, name, bidsSession, study string) (*dto.TimepointResponse, error) {
	name = strings.TrimSpace(name)
	bidsSession = strings.TrimSpace(bidsSession)

	var (
		tp  *model.Timepoint
		err error
	)
	if bidsSession == "" {
		tp, err = s.repo.Timepoint.GetByName(ctx, name)
	} else {
		var studyID *uint
		if study = strings.TrimSpace(study); study != "" {
			st, err := s.findStudy(ctx, study)
			if err != nil {
				return nil, err
			}
			studyID = &st.ID
		}
		tp, err = s.repo.Timepoint.GetByBids(ctx, name, bidsSession, studyID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimepointNotFound
		}
		s.logger.Error("查询时间点失败", zap.String("name", name), zap.String("bids_session", bidsSession), zap.Error(err))
		return nil, err
	}
	return &dto.TimepointResponse{
		Name:        tp.Name,
		BidsName:    tp.BidsName,
		BidsSession: tp.BidsSession,
		IsPhantom:   tp.IsPhantom,
		SiteID:      tp.SiteID,
	}, nil
}

func (s *subjectService) GetStudyTimepoints(ctx context.Context, study string, req *dto.TimepointListRequest) ([]string, error) {
	st, err := s.findStudy(ctx, study)
	if err != nil {
		return nil, err
	}

	var siteID *uint
	if code := strings.TrimSpace(req.Site); code != "" {
		site, err := s.repo.Site.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSiteNotFound
			}
			s.logger.Error("查询站点失败", zap.String("site", code), zap.Error(err))
			return nil, err
		}
		siteID = &site.ID
	}

	names, err := s.repo.Timepoint.ListNames(ctx, st.ID, siteID, req.Phantoms)
	if err != nil {
		s.logger.Error("查询研究时间点失败", zap.Uint("study_id", st.ID), zap.Error(err))
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *subjectService) GetScan(ctx context.Context, req *dto.ScanLookupRequest) ([]dto.ScanResult, error) {
	scans, err := s.repo.Scan.Find(ctx, repository.ScanLookup{
		Name:      strings.TrimSpace(req.Name),
		Timepoint: strings.TrimSpace(req.Timepoint),
		Repeat:    req.Repeat,
		Bids:      req.Bids,
	})
	if err != nil {
		s.logger.Error("查询扫描失败", zap.String("name", req.Name), zap.Bool("bids", req.Bids), zap.Error(err))
		return nil, err
	}
	out := make([]dto.ScanResult, 0, len(scans))
	for _, scan := range scans {
		out = append(out, toScanResult(scan))
	}
	return out, nil
}

func (s *subjectService) findStudy(ctx context.Context, code string) (*model.Study, error) {
	st, err := s.repo.Study.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudyNotFound
		}
		s.logger.Error("查询研究失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return st, nil
}
