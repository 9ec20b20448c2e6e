package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/filter"
	"github.com/tomwright01/dashboard/internal/model"
	"github.com/tomwright01/dashboard/internal/repository"
	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
	"github.com/tomwright01/dashboard/pkg/metrics"
)

// QCService QC 审核记录查询业务接口
type QCService interface {
	// GetScanQC 按三态开关与过滤条件返回 {name, approved, comment}
	GetScanQC(ctx context.Context, req *dto.QCQueryRequest) ([]dto.QCRecordResponse, error)
	// OutstandingReviews 尚未审核的扫描（维护任务使用）
	OutstandingReviews(ctx context.Context, req *dto.OutstandingRequest) ([]dto.QCRecordResponse, error)
}

type qcService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewQCService 创建 QCService 实例
func NewQCService(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) QCService {
	return &qcService{repo: repo, metrics: m, logger: logger}
}

// allowedStates 把包含开关转换为允许出现的状态集合。
// 三个已审核状态开关全部关闭且不包含未审核记录时，请求不可能有结果，视为参数错误。
func allowedStates(req *dto.QCQueryRequest) ([]model.QCStatus, error) {
	include := func(p *bool) bool { return p == nil || *p }

	var states []model.QCStatus
	if req.IncludeNew {
		states = append(states, model.QCUnreviewed)
	}
	if include(req.Approved) {
		states = append(states, model.QCApproved)
	}
	if include(req.Flagged) {
		states = append(states, model.QCFlagged)
	}
	if include(req.Blacklisted) {
		states = append(states, model.QCBlacklisted)
	}
	if len(states) == 0 {
		return nil, pkgerrors.NewValidationError("approved/flagged/blacklisted", "", "至少需要包含一种 QC 状态")
	}
	return states, nil
}

// ────────────────────── GetScanQC ──────────────────────

func (s *qcService) GetScanQC(ctx context.Context, req *dto.QCQueryRequest) ([]dto.QCRecordResponse, error) {
	states, err := allowedStates(req)
	if err != nil {
		s.metrics.RecordQCQuery("invalid")
		return nil, err
	}

	q := repository.QCQuery{
		States:          states,
		Studies:         filter.SplitValues(req.Study),
		Sites:           filter.SplitValues(req.Site),
		Tags:            filter.SplitValues(req.Tag),
		Comments:        splitComments(req.Comment),
		IncludePhantoms: req.IncludePhantoms,
		UserID:          req.UserID,
		Sort:            req.Sort,
	}
	return s.list(ctx, q)
}

// ────────────────────── OutstandingReviews ──────────────────────

func (s *qcService) OutstandingReviews(ctx context.Context, req *dto.OutstandingRequest) ([]dto.QCRecordResponse, error) {
	q := repository.QCQuery{
		States:  []model.QCStatus{model.QCUnreviewed},
		Studies: filter.SplitValues(req.Study),
		Sites:   filter.SplitValues(req.Site),
		Sort:    true,
	}
	return s.list(ctx, q)
}

func (s *qcService) list(ctx context.Context, q repository.QCQuery) ([]dto.QCRecordResponse, error) {
	rows, err := s.repo.QC.List(ctx, q)
	if err != nil {
		s.metrics.RecordQCQuery("error")
		s.logger.Error("查询 QC 记录失败", zap.Error(err))
		return nil, err
	}
	s.metrics.RecordQCQuery("ok")

	out := make([]dto.QCRecordResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.QCRecordResponse{
			Name:     r.Name,
			Approved: r.Approved,
			Comment:  r.Comment,
			Status:   string(r.Status()),
		})
	}
	return out, nil
}

// splitComments 备注本身可能包含逗号，多个备注以分号分隔
func splitComments(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, c := range strings.Split(item, ";") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}
