package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/repository"
	"github.com/satwikShresth/OpenMario-sub003/internal/requisite"
	"github.com/satwikShresth/OpenMario-sub003/pkg/database"
	"github.com/satwikShresth/OpenMario-sub003/pkg/tracing"
)

// ErrConflictsFound 检查发现冲突，planctl 以非零状态退出
var ErrConflictsFound = errors.New("计划存在冲突")

// planFile check 命令读取的计划文件
type planFile struct {
	Term      string      `json:"term"`
	Year      int         `json:"year"`
	Events    []planEntry `json:"events"`
	Completed []string    `json:"completed"`
}

type planEntry struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	CourseID  string   `json:"course_id"`
	CRN       string   `json:"crn"`
	Title     string   `json:"title"`
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// snapshot 转换为检测输入；缺省类型为 course，缺省 ID 按序号生成
func (p *planFile) snapshot() (conflict.Snapshot, error) {
	placements := make([]conflict.Placement, 0, len(p.Events))
	for i, e := range p.Events {
		typ := e.Type
		if typ == "" {
			typ = conflict.PlacementCourse
		}
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("event-%d", i+1)
		}
		var days []byte
		if e.Days != nil {
			var err error
			if days, err = json.Marshal(e.Days); err != nil {
				return conflict.Snapshot{}, err
			}
		}
		placements = append(placements, conflict.Placement{
			ID:        id,
			Type:      typ,
			CourseID:  e.CourseID,
			CRN:       e.CRN,
			Title:     e.Title,
			Term:      p.Term,
			Year:      p.Year,
			Days:      string(days),
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
		})
	}
	return conflict.Snapshot{Placements: placements, CompletedCourseIDs: p.Completed}, nil
}

func readPlanFile(r io.Reader) (*planFile, error) {
	var p planFile
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("解析计划文件失败: %w", err)
	}
	if p.Term == "" || p.Year == 0 {
		return nil, errors.New("计划文件缺少 term 或 year")
	}
	return &p, nil
}

func newCheckCmd(opts *options) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check <plan.json>",
		Short: "离线检查一份学期计划的冲突",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("打开计划文件失败: %w", err)
			}
			defer f.Close()

			plan, err := readPlanFile(f)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := database.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			tracer, err := tracing.Setup(ctx, &cfg.Tracing, cmd.Root().Version, logger)
			if err != nil {
				return err
			}
			defer tracer.Shutdown(context.WithoutCancel(ctx))

			repo := repository.NewRepository(db)
			engine := conflict.NewEngine(
				requisite.NewResolver(repo.Course, repo.Requisite, logger),
				logger,
				conflict.WithMaxConcurrency(cfg.Conflict.MaxConcurrentLookups),
				conflict.WithLookupTimeout(cfg.Conflict.LookupTimeout),
				conflict.WithTracerProvider(tracer.TracerProvider()),
			)
			return runCheck(ctx, cmd.OutOrStdout(), engine, plan, opts.jsonOutput, logger)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "检查超时")
	return cmd
}

func runCheck(ctx context.Context, w io.Writer, detector conflict.Detector, plan *planFile, asJSON bool, logger *zap.Logger) error {
	snap, err := plan.snapshot()
	if err != nil {
		return err
	}

	conflicts, err := detector.Detect(ctx, snap, plan.Term, plan.Year)
	if err != nil {
		logger.Error("冲突检测失败", zap.Error(err))
		return fmt.Errorf("冲突检测失败: %w", err)
	}

	if asJSON {
		if err := printJSON(w, conflicts); err != nil {
			return err
		}
	} else {
		printConflicts(w, plan, conflicts)
	}

	if len(conflicts) > 0 {
		return ErrConflictsFound
	}
	return nil
}

func printConflicts(w io.Writer, plan *planFile, conflicts []conflict.Conflict) {
	printHeader(w, fmt.Sprintf("%s %d：%d 个条目", plan.Term, plan.Year, len(plan.Events)))
	if len(conflicts) == 0 {
		printSuccess(w, "未发现冲突")
		return
	}

	for _, c := range conflicts {
		line := fmt.Sprintf("[%s] %s", c.Type, c.CourseName)
		switch c.Type {
		case conflict.TypeDuplicate, conflict.TypeOverlap:
			printError(w, "%s", line)
		default:
			printWarning(w, "%s", line)
		}
		for _, d := range c.Details {
			printDim(w, "    %s", d.Name)
		}
	}
	fmt.Fprintf(w, "\n共 %d 个冲突\n", len(conflicts))
}
