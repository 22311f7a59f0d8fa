package conflict

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/internal/requisite"
)

const tracerName = "github.com/satwikShresth/OpenMario-sub003/internal/conflict"

// Engine 在一份不可变快照上运行全部检测器
type Engine struct {
	source         requisite.Source
	logger         *zap.Logger
	tracer         trace.Tracer
	maxConcurrency int
	lookupTimeout  time.Duration
}

// EngineOption Engine 可选配置
type EngineOption func(*Engine)

// WithMaxConcurrency 先修查询的最大并发数
func WithMaxConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxConcurrency = n
		}
	}
}

// WithLookupTimeout 单门课程先修查询超时
func WithLookupTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.lookupTimeout = d }
}

// WithTracerProvider 指定 span 的来源，默认使用全局 TracerProvider
func WithTracerProvider(tp trace.TracerProvider) EngineOption {
	return func(e *Engine) {
		if tp != nil {
			e.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewEngine 创建检测引擎
func NewEngine(source requisite.Source, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		source:         source,
		logger:         logger,
		tracer:         otel.Tracer(tracerName),
		maxConcurrency: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DetectMissingCorequisites 只运行同修课检测
// 没有课程条目时直接返回，不发起任何查询
func (e *Engine) DetectMissingCorequisites(ctx context.Context, placements []Placement, term string, year int) []Conflict {
	scheduled := scheduledCourses(placements, term, year)
	if len(scheduled) == 0 {
		return make([]Conflict, 0)
	}
	courses := distinctCourses(scheduled)
	results := e.resolveAll(ctx, courses)
	return missingCorequisites(results, courseIDs(courses), nil, term, year)
}

// Detect 运行全部检测器并按固定顺序合并：
// duplicate → overlap → missing-corequisite → unavailable-overlap → missing-prerequisite
//
// 纯检测器同步执行，先修查询在后台并发进行；任一查询慢会拖慢整批结果。
// 检测器内部 panic 被转换为错误返回。
func (e *Engine) Detect(ctx context.Context, snap Snapshot, term string, year int) (conflicts []Conflict, err error) {
	ctx, span := e.tracer.Start(ctx, "conflict.Detect",
		trace.WithAttributes(
			attribute.String("term", term),
			attribute.Int("year", year),
			attribute.Int("placements", len(snap.Placements)),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("冲突检测异常: %v", r)
			conflicts = nil
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "detect failed")
		}
	}()

	scheduled := scheduledCourses(snap.Placements, term, year)
	courses := distinctCourses(scheduled)

	var results []resolved
	var panicked interface{}
	lookedUp := make(chan struct{})
	go func() {
		defer close(lookedUp)
		defer func() { panicked = recover() }()
		if len(courses) > 0 {
			results = e.resolveAll(ctx, courses)
		}
	}()

	duplicates := DetectDuplicates(snap.Placements, term, year)
	overlaps := DetectOverlaps(snap.Placements, term, year)
	unavailable := DetectUnavailableOverlaps(snap.Placements, term, year)

	<-lookedUp
	if panicked != nil {
		panic(panicked)
	}

	scheduledIDs := courseIDs(courses)
	completed := idSet(snap.CompletedCourseIDs)

	conflicts = make([]Conflict, 0, len(duplicates)+len(overlaps)+len(unavailable))
	conflicts = append(conflicts, duplicates...)
	conflicts = append(conflicts, overlaps...)
	conflicts = append(conflicts, missingCorequisites(results, scheduledIDs, completed, term, year)...)
	conflicts = append(conflicts, unavailable...)
	conflicts = append(conflicts, missingPrerequisites(results, scheduledIDs, completed, term, year)...)

	span.SetAttributes(attribute.Int("conflicts", len(conflicts)))
	return conflicts, nil
}

func courseIDs(courses []plannedCourse) map[string]struct{} {
	set := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		set[c.id] = struct{}{}
	}
	return set
}
