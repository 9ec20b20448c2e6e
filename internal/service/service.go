package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/config"
	"github.com/tomwright01/dashboard/internal/repository"
	"github.com/tomwright01/dashboard/pkg/cache"
	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
	"github.com/tomwright01/dashboard/pkg/metrics"
)

// ── 通用业务错误（均可用 errors.Is 匹配 pkgerrors.ErrNotFound） ──

var (
	ErrStudyNotFound     = fmt.Errorf("研究不存在: %w", pkgerrors.ErrNotFound)
	ErrScantypeNotFound  = fmt.Errorf("扫描类型不存在: %w", pkgerrors.ErrNotFound)
	ErrSiteNotFound      = fmt.Errorf("站点不存在: %w", pkgerrors.ErrNotFound)
	ErrSessionNotFound   = fmt.Errorf("会话不存在: %w", pkgerrors.ErrNotFound)
	ErrTimepointNotFound = fmt.Errorf("时间点不存在: %w", pkgerrors.ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("用户不存在: %w", pkgerrors.ErrNotFound)
	ErrRedcapNotFound    = fmt.Errorf("REDCap 配置不存在: %w", pkgerrors.ErrNotFound)
)

// Service 所有 Service 的聚合入口
type Service struct {
	Search  SearchService
	Metric  MetricService
	QC      QCService
	Study   StudyService
	Subject SubjectService
	User    UserService
	Export  ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	c cache.Cache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	metric := NewMetricService(repo, c, cfg.Cache.TTL, m, logger)
	qc := NewQCService(repo, m, logger)
	return &Service{
		Search:  NewSearchService(repo, cfg.Search.MaxResults, m, logger),
		Metric:  metric,
		QC:      qc,
		Study:   NewStudyService(repo, logger),
		Subject: NewSubjectService(repo, logger),
		User:    NewUserService(repo, logger),
		Export:  NewExportService(metric, qc, logger),
	}
}
