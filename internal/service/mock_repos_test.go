package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/filter"
	"github.com/tomwright01/dashboard/internal/model"
	"github.com/tomwright01/dashboard/internal/repository"
)

// newMockRepository 组装全部 mock，测试按需向各 mock 填充数据
func newMockRepository() (*repository.Repository, *mocks) {
	m := &mocks{
		study:     newMockStudyRepo(),
		site:      &mockSiteRepo{forUser: make(map[uint][]model.Site)},
		scantype:  &mockScantypeRepo{types: make(map[string]*model.Scantype)},
		timepoint: &mockTimepointRepo{tps: make(map[string]*model.Timepoint)},
		session:   &mockSessionRepo{},
		scan:      &mockScanRepo{},
		metric:    &mockMetricRepo{},
		qc:        &mockQCRepo{},
		user:      &mockUserRepo{users: make(map[uint]*model.User)},
		redcap:    &mockRedcapRepo{configs: make(map[string]*model.RedcapConfig)},
	}
	repo := &repository.Repository{
		Study:     m.study,
		Site:      m.site,
		Scantype:  m.scantype,
		Timepoint: m.timepoint,
		Session:   m.session,
		Scan:      m.scan,
		Metric:    m.metric,
		QC:        m.qc,
		User:      m.user,
		Redcap:    m.redcap,
	}
	return repo, m
}

type mocks struct {
	study     *mockStudyRepo
	site      *mockSiteRepo
	scantype  *mockScantypeRepo
	timepoint *mockTimepointRepo
	session   *mockSessionRepo
	scan      *mockScanRepo
	metric    *mockMetricRepo
	qc        *mockQCRepo
	user      *mockUserRepo
	redcap    *mockRedcapRepo
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToUpper(haystack), strings.ToUpper(needle))
}

func limited[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// ── Mock StudyRepository ──

type mockStudyRepo struct {
	studies   map[string]*model.Study
	sites     map[uint][]model.StudySite
	byTagSite []model.Study
	forUser   map[uint][]model.Study
	nextID    uint
	lastTag   string
	lastSite  string
}

func newMockStudyRepo() *mockStudyRepo {
	return &mockStudyRepo{
		studies: make(map[string]*model.Study),
		sites:   make(map[uint][]model.StudySite),
		forUser: make(map[uint][]model.Study),
	}
}

func (m *mockStudyRepo) add(code string) *model.Study {
	m.nextID++
	st := model.NewStudy(strings.ToUpper(code))
	st.ID = m.nextID
	m.studies[st.Code] = st
	return st
}

func (m *mockStudyRepo) List(_ context.Context) ([]model.Study, error) {
	var result []model.Study
	for _, st := range m.studies {
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockStudyRepo) GetByCode(_ context.Context, code string) (*model.Study, error) {
	if st, ok := m.studies[strings.ToUpper(code)]; ok {
		return st, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudyRepo) GetOrCreate(ctx context.Context, code string) (*model.Study, error) {
	if st, err := m.GetByCode(ctx, code); err == nil {
		return st, nil
	}
	return m.add(code), nil
}

func (m *mockStudyRepo) ListByTagSite(_ context.Context, tag, siteCode string) ([]model.Study, error) {
	m.lastTag, m.lastSite = tag, siteCode
	return m.byTagSite, nil
}

func (m *mockStudyRepo) ListForUser(_ context.Context, userID uint) ([]model.Study, error) {
	return m.forUser[userID], nil
}

func (m *mockStudyRepo) ListSites(_ context.Context, studyID uint) ([]model.StudySite, error) {
	return m.sites[studyID], nil
}

// ── Mock SiteRepository ──

type mockSiteRepo struct {
	sites   []model.Site
	forUser map[uint][]model.Site
}

func (m *mockSiteRepo) List(_ context.Context) ([]model.Site, error) {
	return m.sites, nil
}

func (m *mockSiteRepo) GetByCode(_ context.Context, code string) (*model.Site, error) {
	for i := range m.sites {
		if strings.EqualFold(m.sites[i].Code, code) {
			return &m.sites[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSiteRepo) ListForUser(_ context.Context, userID uint) ([]model.Site, error) {
	return m.forUser[userID], nil
}

// ── Mock ScantypeRepository ──

type mockScantypeRepo struct {
	types   map[string]*model.Scantype
	created int
}

func (m *mockScantypeRepo) List(_ context.Context) ([]model.Scantype, error) {
	var result []model.Scantype
	for _, t := range m.types {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockScantypeRepo) GetByName(_ context.Context, name string) (*model.Scantype, error) {
	if t, ok := m.types[strings.ToUpper(name)]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScantypeRepo) GetOrCreate(ctx context.Context, name string) (*model.Scantype, error) {
	if t, err := m.GetByName(ctx, name); err == nil {
		return t, nil
	}
	m.created++
	t := &model.Scantype{ID: uint(len(m.types) + 1), Name: name}
	m.types[strings.ToUpper(name)] = t
	return t, nil
}

// ── Mock RedcapRepository ──

type mockRedcapRepo struct {
	configs map[string]*model.RedcapConfig
}

func redcapKey(project int, instrument, url string) string {
	return fmt.Sprintf("%d|%s|%s", project, instrument, url)
}

func (m *mockRedcapRepo) Find(_ context.Context, project int, instrument, url string) (*model.RedcapConfig, error) {
	if c, ok := m.configs[redcapKey(project, instrument, url)]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRedcapRepo) GetOrCreate(ctx context.Context, project int, instrument, url string) (*model.RedcapConfig, error) {
	if c, err := m.Find(ctx, project, instrument, url); err == nil {
		return c, nil
	}
	c := &model.RedcapConfig{ID: uint(len(m.configs) + 1), Project: project, Instrument: instrument, URL: url}
	m.configs[redcapKey(project, instrument, url)] = c
	return c, nil
}

// ── Mock TimepointRepository ──

type mockTimepointRepo struct {
	tps       map[string]*model.Timepoint
	names     []string
	lastSite  *uint
	phantoms  bool
	lastStudy *uint
}

func (m *mockTimepointRepo) GetByName(_ context.Context, name string) (*model.Timepoint, error) {
	if tp, ok := m.tps[strings.ToUpper(name)]; ok {
		return tp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimepointRepo) GetByBids(_ context.Context, bidsName, bidsSession string, studyID *uint) (*model.Timepoint, error) {
	m.lastStudy = studyID
	for _, tp := range m.tps {
		if tp.BidsName == bidsName && tp.BidsSession == bidsSession {
			return tp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimepointRepo) ListNames(_ context.Context, _ uint, siteID *uint, includePhantoms bool) ([]string, error) {
	m.lastSite, m.phantoms = siteID, includePhantoms
	return m.names, nil
}

func (m *mockTimepointRepo) Search(_ context.Context, text string, limit int) ([]model.Timepoint, error) {
	var result []model.Timepoint
	for _, tp := range m.tps {
		if contains(tp.Name, text) {
			result = append(result, *tp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return limited(result, limit), nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	sessions []model.Session
	calls    []string
	err      error
}

func (m *mockSessionRepo) Get(_ context.Context, name string, num int) (*model.Session, error) {
	for i := range m.sessions {
		if strings.EqualFold(m.sessions[i].Name, name) && m.sessions[i].Num == num {
			return &m.sessions[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) FindByName(_ context.Context, name string, num *int, limit int) ([]model.Session, error) {
	if num != nil {
		m.calls = append(m.calls, "strict")
	} else {
		m.calls = append(m.calls, "name_only")
	}
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Session
	for _, s := range m.sessions {
		if strings.EqualFold(s.Name, name) && (num == nil || s.Num == *num) {
			result = append(result, s)
		}
	}
	return limited(result, limit), nil
}

func (m *mockSessionRepo) Search(_ context.Context, text string, limit int) ([]model.Session, error) {
	m.calls = append(m.calls, "fuzzy")
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Session
	for _, s := range m.sessions {
		if contains(s.Name, text) {
			result = append(result, s)
		}
	}
	return limited(result, limit), nil
}

// ── Mock ScanRepository ──

type mockScanRepo struct {
	scans []model.Scan
	calls []string
	last  repository.ScanLookup
}

func (m *mockScanRepo) Find(_ context.Context, q repository.ScanLookup) ([]model.Scan, error) {
	m.last = q
	var result []model.Scan
	for _, s := range m.scans {
		name := s.Name
		if q.Bids {
			name = s.BidsName
		}
		if !strings.EqualFold(name, q.Name) {
			continue
		}
		if q.Timepoint != "" && !strings.EqualFold(s.Timepoint, q.Timepoint) {
			continue
		}
		if q.Repeat != nil && s.Repeat != *q.Repeat {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (m *mockScanRepo) FindByTimepoint(_ context.Context, timepoint string, repeat *int, limit int) ([]model.Scan, error) {
	if repeat != nil {
		m.calls = append(m.calls, "strict")
	} else {
		m.calls = append(m.calls, "name_only")
	}
	var result []model.Scan
	for _, s := range m.scans {
		if strings.EqualFold(s.Timepoint, timepoint) && (repeat == nil || s.Repeat == *repeat) {
			result = append(result, s)
		}
	}
	return limited(result, limit), nil
}

func (m *mockScanRepo) Search(_ context.Context, field repository.ScanField, text string, limit int) ([]model.Scan, error) {
	m.calls = append(m.calls, "search_"+field.String())
	var result []model.Scan
	for _, s := range m.scans {
		var value string
		switch field {
		case repository.ScanFieldName:
			value = s.Name
		case repository.ScanFieldTimepoint:
			value = s.Timepoint
		case repository.ScanFieldTag:
			value = s.Tag
		case repository.ScanFieldDescription:
			value = s.Description
		}
		if contains(value, text) {
			result = append(result, s)
		}
	}
	return limited(result, limit), nil
}

// ── Mock MetricRepository ──

type mockMetricRepo struct {
	values     []model.MetricValueRecord
	types      []model.MetricTypeRecord
	lastFilter *filter.Filter
	typeCalls  int
	valueCalls int
}

func (m *mockMetricRepo) ListValues(_ context.Context, f *filter.Filter) ([]model.MetricValueRecord, error) {
	m.valueCalls++
	m.lastFilter = f
	return m.values, nil
}

func (m *mockMetricRepo) ListTypes(_ context.Context, f *filter.Filter) ([]model.MetricTypeRecord, error) {
	m.typeCalls++
	m.lastFilter = f
	return m.types, nil
}

// ── Mock QCRepository ──

// mockQCRepo 按状态集合过滤预置记录，其余条件只记录不执行
type mockQCRepo struct {
	records   []model.QCRecord
	lastQuery repository.QCQuery
	calls     int
}

func (m *mockQCRepo) List(_ context.Context, q repository.QCQuery) ([]model.QCRecord, error) {
	m.calls++
	m.lastQuery = q
	allowed := make(map[model.QCStatus]bool, len(q.States))
	for _, st := range q.States {
		allowed[st] = true
	}
	var result []model.QCRecord
	for _, r := range m.records {
		if allowed[r.Status()] {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockQCRepo) GetChecklist(_ context.Context, _ uint) (*model.ScanChecklist, error) {
	return nil, gorm.ErrRecordNotFound
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[uint]*model.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Search(_ context.Context, username string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if contains(u.Username, username) {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (m *mockUserRepo) ListGrants(_ context.Context, _ uint) ([]model.StudyUser, error) {
	return nil, nil
}
