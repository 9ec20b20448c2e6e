package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/filter"
	pkgerrors "github.com/tomwright01/dashboard/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRows       = fmt.Errorf("没有可导出的记录: %w", pkgerrors.ErrNotFound)
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出内容与对应的 JSON 接口完全一致，过滤规则由 MetricService / QCService 负责
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportMetricValues 导出指标值为 Excel
	ExportMetricValues(ctx context.Context, values filter.Values, byName bool) (*bytes.Buffer, string, error)
	// ExportQC 导出扫描 QC 状态为 Excel
	ExportQC(ctx context.Context, req *dto.QCQueryRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	metric MetricService
	qc     QCService
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(metric MetricService, qc QCService, logger *zap.Logger) ExportService {
	return &exportService{metric: metric, qc: qc, logger: logger, now: time.Now}
}

var metricValueHeaders = []string{"研究", "站点", "会话", "扫描", "扫描类型", "指标", "值"}

var qcHeaders = []string{"扫描", "状态", "是否通过", "备注"}

// ────────────────────── ExportMetricValues ──────────────────────

func (s *exportService) ExportMetricValues(ctx context.Context, values filter.Values, byName bool) (*bytes.Buffer, string, error) {
	rows, err := s.metric.QueryValues(ctx, values, byName)
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", ErrExportNoRows
	}

	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.StudyName, r.SiteName, r.SessionName, r.ScanName,
			r.ScantypeName, r.MetrictypeName, r.Value,
		})
	}

	buf, err := s.writeSheet("指标值", metricValueHeaders, data)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("metric_values_%s.xlsx", s.now().Format("20060102_150405")), nil
}

// ────────────────────── ExportQC ──────────────────────

func (s *exportService) ExportQC(ctx context.Context, req *dto.QCQueryRequest) (*bytes.Buffer, string, error) {
	records, err := s.qc.GetScanQC(ctx, req)
	if err != nil {
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRows
	}

	data := make([][]any, 0, len(records))
	for _, r := range records {
		approved := "-"
		if r.Approved != nil {
			approved = fmt.Sprintf("%t", *r.Approved)
		}
		comment := ""
		if r.Comment != nil {
			comment = *r.Comment
		}
		data = append(data, []any{r.Name, r.Status, approved, comment})
	}

	buf, err := s.writeSheet("QC", qcHeaders, data)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("scan_qc_%s.xlsx", s.now().Format("20060102_150405")), nil
}

// ── 辅助函数 ──

// writeSheet 生成单 Sheet 工作簿：首行为表头，其后按顺序写入数据行
func (s *exportService) writeSheet(sheetName string, headers []string, rows [][]any) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.String("sheet", sheetName), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
		f.SetColWidth(sheetName, colName(i), colName(i), 20)
	}
	f.SetCellStyle(sheetName, cell(colName(0), 1), cell(colName(len(headers)-1), 1), headerStyle)

	for r, values := range rows {
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
