// Package scanid 解析遵循命名规范的受试者、会话与扫描文件标识。
//
// 受试者/会话形式：STUDY_SITE_SUBJECT_TIMEPOINT[_SESSION]
// 体模形式：      STUDY_SITE_PHA_XXXX
// 扫描文件形式：  <会话形式>_TAG_SERIES[_DESCRIPTION][.EXT]
//
// 解析是纯语法操作，不访问数据库。
package scanid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	phantomBody = `(?P<study>[^_]+)_(?P<site>[^_]+)_(?P<subject>PHA_[^_]+)`
	subjectBody = `(?P<study>[^_]+)_(?P<site>[^_]+)_(?P<subject>[^_]+)_(?P<timepoint>[^_]+)(?:_(?P<session>\d+))?`
	fileSuffix  = `_(?P<tag>[^_]+)_(?P<series>\d+)(?:_(?P<description>[^.]*))?(?P<ext>\..*)?`
)

var (
	phantomRe         = regexp.MustCompile(`^` + phantomBody + `$`)
	subjectRe         = regexp.MustCompile(`^` + subjectBody + `$`)
	phantomFilenameRe = regexp.MustCompile(`^` + phantomBody + fileSuffix + `$`)
	subjectFilenameRe = regexp.MustCompile(`^` + subjectBody + fileSuffix + `$`)
)

// ParseError 输入不符合命名规范
type ParseError struct {
	Input string
	Form  string // "subject" | "filename"
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scanid: %q 不是合法的%s标识", e.Input, formLabel(e.Form))
}

func formLabel(form string) string {
	if form == "filename" {
		return "扫描文件"
	}
	return "受试者"
}

// Identifier 结构化的受试者/会话标识
type Identifier struct {
	Study     string
	Site      string
	Subject   string
	Timepoint string // 体模标识为空
	Session   string // 原始会话编号文本（保留前导零），为空表示未指定
}

// IsPhantom 是否为体模标识
func (id Identifier) IsPhantom() bool {
	return strings.HasPrefix(strings.ToUpper(id.Subject), "PHA_")
}

// HasSession 是否携带会话编号
func (id Identifier) HasSession() bool { return id.Session != "" }

// SessionNum 返回整数形式的会话编号
func (id Identifier) SessionNum() (int, bool) {
	if id.Session == "" {
		return 0, false
	}
	n, err := strconv.Atoi(id.Session)
	if err != nil {
		return 0, false
	}
	return n, true
}

// WithoutSession 返回去掉会话编号后的副本
func (id Identifier) WithoutSession() Identifier {
	id.Session = ""
	return id
}

// SubjectID 完整的受试者+时间点标识，即 sessions.name / scans.timepoint 的取值
func (id Identifier) SubjectID() string {
	parts := []string{id.Study, id.Site, id.Subject}
	if id.Timepoint != "" {
		parts = append(parts, id.Timepoint)
	}
	return strings.Join(parts, "_")
}

// SessionID 受试者标识加会话编号（若有）
func (id Identifier) SessionID() string {
	if id.Session == "" {
		return id.SubjectID()
	}
	return id.SubjectID() + "_" + id.Session
}

// String 规范化重新序列化
func (id Identifier) String() string { return id.SessionID() }

// Filename 扫描文件标识
type Filename struct {
	Identifier
	Tag         string
	Series      string // 保留前导零
	Description string
	Ext         string // 含前导 "."，可为空
}

// ScanName 扫描记录名：会话标识_TAG_SERIES
func (f Filename) ScanName() string {
	return strings.Join([]string{f.SessionID(), f.Tag, f.Series}, "_")
}

// SeriesNum 返回整数形式的序列号
func (f Filename) SeriesNum() int {
	n, _ := strconv.Atoi(f.Series)
	return n
}

// String 规范化重新序列化
func (f Filename) String() string {
	s := f.ScanName()
	if f.Description != "" {
		s += "_" + f.Description
	}
	return s + f.Ext
}

// Normalize 去除首尾空白并转为大写，与检索时的处理一致
func Normalize(text string) string {
	return strings.ToUpper(strings.TrimSpace(text))
}

// Parse 解析受试者/会话形式的标识
func Parse(text string) (Identifier, error) {
	text = strings.TrimSpace(text)
	for _, re := range []*regexp.Regexp{phantomRe, subjectRe} {
		if groups := match(re, text); groups != nil {
			return identifierFrom(groups), nil
		}
	}
	return Identifier{}, &ParseError{Input: text, Form: "subject"}
}

// ParseFilename 解析扫描文件形式的标识
func ParseFilename(text string) (Filename, error) {
	text = strings.TrimSpace(text)
	for _, re := range []*regexp.Regexp{phantomFilenameRe, subjectFilenameRe} {
		if groups := match(re, text); groups != nil {
			return Filename{
				Identifier:  identifierFrom(groups),
				Tag:         groups["tag"],
				Series:      groups["series"],
				Description: groups["description"],
				Ext:         groups["ext"],
			}, nil
		}
	}
	return Filename{}, &ParseError{Input: text, Form: "filename"}
}

func identifierFrom(groups map[string]string) Identifier {
	return Identifier{
		Study:     groups["study"],
		Site:      groups["site"],
		Subject:   groups["subject"],
		Timepoint: groups["timepoint"],
		Session:   groups["session"],
	}
}

func match(re *regexp.Regexp, text string) map[string]string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	groups := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups
}
