package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Study     StudyRepository
	Site      SiteRepository
	Scantype  ScantypeRepository
	Timepoint TimepointRepository
	Session   SessionRepository
	Scan      ScanRepository
	Metric    MetricRepository
	QC        QCRepository
	User      UserRepository
	Redcap    RedcapRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Study:     NewStudyRepo(db),
		Site:      NewSiteRepo(db),
		Scantype:  NewScantypeRepo(db),
		Timepoint: NewTimepointRepo(db),
		Session:   NewSessionRepo(db),
		Scan:      NewScanRepo(db),
		Metric:    NewMetricRepo(db),
		QC:        NewQCRepo(db),
		User:      NewUserRepo(db),
		Redcap:    NewRedcapRepo(db),
	}
}

// createOrGet 在单个事务中插入 row。
// 唯一约束冲突（gorm.ErrDuplicatedKey，需开启 TranslateError）说明并发请求已创建同键记录，
// 此时按 lookup 重新读取；其他错误在回滚后原样返回。
func createOrGet[T any](ctx context.Context, db *gorm.DB, row *T, lookup func(tx *gorm.DB) *gorm.DB) (*T, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	var existing T
	if err := lookup(db.WithContext(ctx)).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 生成大小写不敏感子串匹配的 LIKE 模式（调用方需比较 UPPER(col)）
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToUpper(text)) + "%"
}

// containsClause 返回 "UPPER(col) LIKE ? ESCAPE '\'"
func containsClause(column string) string {
	return "UPPER(" + column + `) LIKE ? ESCAPE '\'`
}

func withLimit(db *gorm.DB, limit int) *gorm.DB {
	if limit > 0 {
		return db.Limit(limit)
	}
	return db
}

// upperAll 将值列表统一为大写，用于 UPPER(col) IN ? 比较
func upperAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToUpper(v))
	}
	return out
}
