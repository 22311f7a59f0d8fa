package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/dto"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEvents     = errors.New("该学期计划为空")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出学期计划的冲突报告为 Excel (.xlsx)
//   - 冲突现场计算，不读取会话缓存的结果
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Sheet "冲突"：每条冲突明细一行；Sheet "计划"：该学期全部条目
type ExportService interface {
	// ExportConflicts 导出冲突报告为 Excel
	ExportConflicts(ctx context.Context, userID string, q *dto.TermQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	events    repository.PlanEventRepository
	conflicts ConflictService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(events repository.PlanEventRepository, conflicts ConflictService, logger *zap.Logger) ExportService {
	return &exportService{events: events, conflicts: conflicts, logger: logger}
}

var conflictTypeLabels = map[conflict.Type]string{
	conflict.TypeDuplicate:           "重复选课",
	conflict.TypeOverlap:             "时间重叠",
	conflict.TypeMissingCorequisite:  "缺少同修课",
	conflict.TypeUnavailableOverlap:  "与不可用时间冲突",
	conflict.TypeMissingPrerequisite: "先修课未满足",
}

const (
	conflictSheet = "冲突"
	planSheet     = "计划"
)

// ═══════════════════════════════════════════════════════════
// ExportConflicts 导出冲突报告为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "冲突"：| 类型 | 课程 | 冲突 ID | 明细 |，无冲突时写一行"无冲突"
//   - Sheet "计划"：| 类型 | 课程编号 | CRN | 名称 | 星期 | 时间 |
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportConflicts(ctx context.Context, userID string, q *dto.TermQuery) (*bytes.Buffer, string, error) {
	// 1. 查询学期条目
	events, err := s.events.ListByUserAndTerm(ctx, userID, q.Term, q.Year)
	if err != nil {
		s.logger.Error("查询计划条目失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if len(events) == 0 {
		return nil, "", ErrExportNoEvents
	}

	// 2. 现场检测冲突
	conflicts, err := s.conflicts.Detect(ctx, userID, q)
	if err != nil {
		return nil, "", err
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(conflictSheet)
	f.SetActiveSheet(idx)
	f.NewSheet(planSheet)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── 冲突 Sheet ──
	f.SetColWidth(conflictSheet, "A", "A", 18)
	f.SetColWidth(conflictSheet, "B", "B", 28)
	f.SetColWidth(conflictSheet, "C", "C", 36)
	f.SetColWidth(conflictSheet, "D", "D", 60)

	f.SetCellValue(conflictSheet, "A1", fmt.Sprintf("%s %d 学期计划冲突报告", q.Term, q.Year))
	f.MergeCell(conflictSheet, "A1", "D1")
	f.SetCellStyle(conflictSheet, "A1", "A1", headerStyle)

	writeHeader(f, conflictSheet, 2, headerStyle, "类型", "课程", "冲突 ID", "明细")

	row := 3
	if len(conflicts) == 0 {
		f.SetCellValue(conflictSheet, cell("A", row), "无冲突")
	}
	for _, c := range conflicts {
		label := conflictTypeLabels[c.Type]
		if label == "" {
			label = string(c.Type)
		}
		details := c.Details
		if len(details) == 0 {
			details = []conflict.Detail{{}}
		}
		for _, d := range details {
			f.SetCellValue(conflictSheet, cell("A", row), label)
			f.SetCellValue(conflictSheet, cell("B", row), c.CourseName)
			f.SetCellValue(conflictSheet, cell("C", row), c.ID)
			f.SetCellValue(conflictSheet, cell("D", row), d.Name)
			row++
		}
	}

	// ── 计划 Sheet ──
	f.SetColWidth(planSheet, "A", "A", 12)
	f.SetColWidth(planSheet, "B", "C", 12)
	f.SetColWidth(planSheet, "D", "D", 36)
	f.SetColWidth(planSheet, "E", "E", 28)
	f.SetColWidth(planSheet, "F", "F", 14)

	writeHeader(f, planSheet, 1, headerStyle, "类型", "课程编号", "CRN", "名称", "星期", "时间")

	row = 2
	for i := range events {
		e := toPlanEventResponse(&events[i])
		timeText := "-"
		if e.StartTime != "" {
			timeText = fmt.Sprintf("%s-%s", e.StartTime, e.EndTime)
		}
		f.SetCellValue(planSheet, cell("A", row), e.Type)
		f.SetCellValue(planSheet, cell("B", row), e.CourseID)
		f.SetCellValue(planSheet, cell("C", row), e.CRN)
		f.SetCellValue(planSheet, cell("D", row), e.Title)
		f.SetCellValue(planSheet, cell("E", row), strings.Join(e.Days, ", "))
		f.SetCellValue(planSheet, cell("F", row), timeText)
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("冲突报告_%s_%d.xlsx", q.Term, q.Year)
	return buf, filename, nil
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, row int, style int, titles ...string) {
	for i, title := range titles {
		c := cell(colName(i), row)
		f.SetCellValue(sheet, c, title)
		f.SetCellStyle(sheet, c, c, style)
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
