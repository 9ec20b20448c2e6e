package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/filter"
	"github.com/tomwright01/dashboard/internal/model"
	"github.com/tomwright01/dashboard/internal/repository"
	"github.com/tomwright01/dashboard/pkg/cache"
	"github.com/tomwright01/dashboard/pkg/metrics"
)

// MetricService 指标查询业务接口
//
// 过滤条件统一经 filter.Compose 校验：未知键记录告警后丢弃，
// 值无法转换时返回 *errors.ValidationError。
type MetricService interface {
	// QueryTypes 研究/站点/扫描类型/指标类型 组合，按 id 过滤
	QueryTypes(ctx context.Context, values filter.Values) ([]dto.MetricTypeResponse, error)
	// Options 级联下拉框选项（由 QueryTypes 去重得到）
	Options(ctx context.Context, values filter.Values) (*dto.MetricOptionsResponse, error)
	// QueryValues 指标值扁平记录，byName 为 false 时所有值必须为整数 id
	QueryValues(ctx context.Context, values filter.Values, byName bool) ([]dto.MetricValueResponse, error)
}

type metricService struct {
	repo     *repository.Repository
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewMetricService 创建 MetricService 实例，c 为 nil 时不缓存
func NewMetricService(repo *repository.Repository, c cache.Cache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) MetricService {
	if c == nil {
		c = cache.Nop{}
	}
	return &metricService{repo: repo, cache: c, cacheTTL: ttl, metrics: m, logger: logger}
}

// compose 组合过滤器并记录被丢弃的键
func (s *metricService) compose(qt filter.QueryType, values filter.Values) (*filter.Filter, error) {
	f, err := filter.Compose(qt, values)
	if err != nil {
		s.logger.Info("过滤参数校验失败", zap.Stringer("query_type", qt), zap.Error(err))
		return nil, err
	}
	if dropped := f.DroppedError(); dropped != nil {
		s.logger.Warn("忽略无效的过滤键",
			zap.Stringer("query_type", qt),
			zap.Strings("keys", f.Dropped),
			zap.Strings("allowed", filter.Whitelist(qt)),
		)
		s.metrics.RecordDroppedKeys(qt.String(), len(f.Dropped))
	}
	s.logger.Debug("过滤条件", zap.String("filter", f.CacheKey()))
	return f, nil
}

// ────────────────────── QueryTypes ──────────────────────

func (s *metricService) QueryTypes(ctx context.Context, values filter.Values) ([]dto.MetricTypeResponse, error) {
	f, err := s.compose(filter.MetricTypes, values)
	if err != nil {
		return nil, err
	}

	key := f.CacheKey()
	var cached []dto.MetricTypeResponse
	found, err := s.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		s.metrics.RecordCacheLookup("error")
		s.logger.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
	case found:
		s.metrics.RecordCacheLookup("hit")
		return cached, nil
	default:
		s.metrics.RecordCacheLookup("miss")
	}

	rows, err := s.repo.Metric.ListTypes(ctx, f)
	if err != nil {
		s.logger.Error("查询指标类型失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.MetricTypeResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toMetricTypeResponse(r))
	}

	if err := s.cache.Set(ctx, key, out, s.cacheTTL); err != nil {
		s.logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

// ────────────────────── Options ──────────────────────

func (s *metricService) Options(ctx context.Context, values filter.Values) (*dto.MetricOptionsResponse, error) {
	types, err := s.QueryTypes(ctx, values)
	if err != nil {
		return nil, err
	}

	studies := newOptionSet()
	sites := newOptionSet()
	scantypes := newOptionSet()
	metrictypes := newOptionSet()
	for _, t := range types {
		studies.add(t.StudyID, t.StudyName)
		sites.add(t.SiteID, t.SiteName)
		scantypes.add(t.ScantypeID, t.ScantypeName)
		metrictypes.add(t.MetrictypeID, t.MetrictypeName)
	}
	return &dto.MetricOptionsResponse{
		Studies:     studies.sorted(),
		Sites:       sites.sorted(),
		Scantypes:   scantypes.sorted(),
		Metrictypes: metrictypes.sorted(),
	}, nil
}

// ────────────────────── QueryValues ──────────────────────

func (s *metricService) QueryValues(ctx context.Context, values filter.Values, byName bool) ([]dto.MetricValueResponse, error) {
	qt := filter.MetricValuesByID
	if byName {
		qt = filter.MetricValuesByName
	}
	f, err := s.compose(qt, values)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Metric.ListValues(ctx, f)
	if err != nil {
		s.logger.Error("查询指标值失败", zap.Stringer("query_type", qt), zap.Error(err))
		return nil, err
	}
	out := make([]dto.MetricValueResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toMetricValueResponse(r))
	}
	return out, nil
}

// ── 辅助函数 ──

type optionSet map[uint]string

func newOptionSet() optionSet { return optionSet{} }

func (o optionSet) add(id uint, name string) { o[id] = name }

// sorted 按名称排序，名称相同按 id
func (o optionSet) sorted() []dto.OptionItem {
	items := make([]dto.OptionItem, 0, len(o))
	for id, name := range o {
		items = append(items, dto.OptionItem{ID: id, Name: name})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func toMetricTypeResponse(r model.MetricTypeRecord) dto.MetricTypeResponse {
	return dto.MetricTypeResponse{
		StudyID:        r.StudyID,
		StudyName:      r.StudyName,
		SiteID:         r.SiteID,
		SiteName:       r.SiteName,
		ScantypeID:     r.ScantypeID,
		ScantypeName:   r.ScantypeName,
		MetrictypeID:   r.MetrictypeID,
		MetrictypeName: r.MetrictypeName,
	}
}

func toMetricValueResponse(r model.MetricValueRecord) dto.MetricValueResponse {
	return dto.MetricValueResponse{
		Value:          r.Value,
		MetrictypeID:   r.MetrictypeID,
		MetrictypeName: r.MetrictypeName,
		ScanID:         r.ScanID,
		ScanName:       r.ScanName,
		ScantypeID:     r.ScantypeID,
		ScantypeName:   r.ScantypeName,
		SessionID:      r.SessionID,
		SessionName:    r.SessionName,
		SiteID:         r.SiteID,
		SiteName:       r.SiteName,
		StudyID:        r.StudyID,
		StudyName:      r.StudyName,
	}
}
