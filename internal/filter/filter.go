// Package filter 将调用方提供的 {逻辑键: 值列表} 校验并组合为查询条件。
//
// 每种查询类型拥有一张静态白名单，逻辑键只能通过查表映射到具体列，
// 列名从不来自调用方输入。未知键被丢弃并记录，空值键视为无约束。
package filter

import (
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
)

// QueryType 查询类型
type QueryType int

const (
	MetricValuesByID QueryType = iota
	MetricValuesByName
	MetricTypes
)

func (t QueryType) String() string {
	switch t {
	case MetricValuesByID:
		return "metric-values-by-id"
	case MetricValuesByName:
		return "metric-values-by-name"
	case MetricTypes:
		return "metric-types"
	}
	return "unknown"
}

// Kind 过滤值的目标类型
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindBool
)

// Field 白名单中的单个逻辑键
type Field struct {
	Key    string
	Column string
	Kind   Kind
}

// 逻辑键
const (
	KeyStudies     = "studies"
	KeySites       = "sites"
	KeySessions    = "sessions"
	KeyScans       = "scans"
	KeyScantypes   = "scantypes"
	KeyMetrictypes = "metrictypes"
	KeyIsPhantom   = "isphantom"
)

var whitelists = map[QueryType][]Field{
	MetricValuesByID: {
		{Key: KeyStudies, Column: "studies.id", Kind: KindInt},
		{Key: KeySites, Column: "sites.id", Kind: KindInt},
		{Key: KeySessions, Column: "sessions.id", Kind: KindInt},
		{Key: KeyScans, Column: "scans.id", Kind: KindInt},
		{Key: KeyScantypes, Column: "scantypes.id", Kind: KindInt},
		{Key: KeyMetrictypes, Column: "metrictypes.id", Kind: KindInt},
	},
	MetricValuesByName: {
		{Key: KeyStudies, Column: "studies.nickname", Kind: KindString},
		{Key: KeySites, Column: "sites.name", Kind: KindString},
		{Key: KeySessions, Column: "sessions.name", Kind: KindString},
		{Key: KeyScans, Column: "scans.name", Kind: KindString},
		{Key: KeyScantypes, Column: "scantypes.name", Kind: KindString},
		{Key: KeyMetrictypes, Column: "metrictypes.name", Kind: KindString},
		{Key: KeyIsPhantom, Column: "timepoints.is_phantom", Kind: KindBool},
	},
	MetricTypes: {
		{Key: KeyStudies, Column: "studies.id", Kind: KindInt},
		{Key: KeySites, Column: "sites.id", Kind: KindInt},
		{Key: KeyScantypes, Column: "scantypes.id", Kind: KindInt},
		{Key: KeyMetrictypes, Column: "metrictypes.id", Kind: KindInt},
	},
}

// Whitelist 返回查询类型接受的逻辑键（有序）
func Whitelist(qt QueryType) []string {
	fields := whitelists[qt]
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	sort.Strings(keys)
	return keys
}

func lookup(qt QueryType, key string) (Field, bool) {
	for _, f := range whitelists[qt] {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Values 调用方提供的原始过滤条件：逻辑键 → 值列表
type Values map[string][]string

// Condition 已校验的单个过滤条件
type Condition struct {
	Field  Field
	Values []interface{}
}

// Filter 已组合的过滤器
type Filter struct {
	Type       QueryType
	Conditions []Condition
	Dropped    []string
}

// Compose 按查询类型的白名单校验并组合过滤条件。
// 键名大小写不敏感；未知键进入 Dropped；空值键被忽略；
// 无法转换的值返回 ValidationError。
func Compose(qt QueryType, values Values) (*Filter, error) {
	merged := make(map[string][]string, len(values))
	for k, v := range values {
		key := strings.ToLower(strings.TrimSpace(k))
		merged[key] = append(merged[key], v...)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := &Filter{Type: qt}
	for _, key := range keys {
		field, ok := lookup(qt, key)
		if !ok {
			f.Dropped = append(f.Dropped, key)
			continue
		}
		raw := SplitValues(merged[key])
		if len(raw) == 0 {
			continue
		}
		converted, err := convert(field, raw)
		if err != nil {
			return nil, err
		}
		f.Conditions = append(f.Conditions, Condition{Field: field, Values: converted})
	}
	return f, nil
}

func convert(field Field, raw []string) ([]interface{}, error) {
	out := make([]interface{}, 0, len(raw))
	for _, v := range raw {
		switch field.Kind {
		case KindInt:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, pkgerrors.NewValidationError(field.Key, v, "必须为整数")
			}
			out = append(out, n)
		case KindBool:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, pkgerrors.NewValidationError(field.Key, v, "必须为布尔值")
			}
			out = append(out, b)
		default:
			out = append(out, strings.ToUpper(v))
		}
	}
	return out, nil
}

// SplitValues 将重复字段与逗号拼接的值统一为去空白、去空项的列表
func SplitValues(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Apply 将条件追加到查询上
func (f *Filter) Apply(db *gorm.DB) *gorm.DB {
	for _, c := range f.Conditions {
		if c.Field.Kind == KindString {
			db = db.Where("UPPER("+c.Field.Column+") IN ?", c.Values)
			continue
		}
		db = db.Where(c.Field.Column+" IN ?", c.Values)
	}
	return db
}

// Has 是否包含指定逻辑键的条件
func (f *Filter) Has(key string) bool {
	for _, c := range f.Conditions {
		if c.Field.Key == key {
			return true
		}
	}
	return false
}

// DroppedError 返回描述被丢弃键的错误，没有丢弃时为 nil
func (f *Filter) DroppedError() error {
	if len(f.Dropped) == 0 {
		return nil
	}
	return &pkgerrors.InvalidKeysError{QueryType: f.Type.String(), Keys: f.Dropped}
}

// CacheKey 条件的稳定文本表示，用于缓存键
func (f *Filter) CacheKey() string {
	var b strings.Builder
	b.WriteString(f.Type.String())
	for _, c := range f.Conditions {
		b.WriteString("|")
		b.WriteString(c.Field.Key)
		b.WriteString("=")
		parts := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			switch x := v.(type) {
			case int64:
				parts = append(parts, strconv.FormatInt(x, 10))
			case bool:
				parts = append(parts, strconv.FormatBool(x))
			case string:
				parts = append(parts, x)
			}
		}
		sort.Strings(parts)
		b.WriteString(strings.Join(parts, ","))
	}
	return b.String()
}
