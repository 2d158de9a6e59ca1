package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/events"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/models"
	"github.com/wfunc/pet-game/internal/repository"
)

// ledgerRefPet 互动流水的关联类型，RefID 为宠物ID
const ledgerRefPet = "pet"

// interactTxOptions 互动事务选项
// 宠物行已加锁，读已提交即可；SQLite 忽略隔离级别
var interactTxOptions = &repository.TxOptions{IsolationLevel: sql.LevelReadCommitted}

// petService 宠物服务实现
type petService struct {
	repos  *repository.Manager
	clock  clock.Clock
	sink   events.Sink
	logger *zap.Logger

	paramsMu sync.RWMutex
	params   pet.Params

	locks *keyedMutex
}

// NewPetService 创建宠物服务
func NewPetService(repos *repository.Manager, params pet.Params, clk clock.Clock, sink events.Sink, log *zap.Logger) (PetService, error) {
	if err := params.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConfigValidate)
	}
	if sink == nil {
		sink = events.Nop{}
	}
	return &petService{
		repos:  repos,
		clock:  clk,
		sink:   sink,
		logger: log,
		params: params,
		locks:  newKeyedMutex(),
	}, nil
}

// Params 当前规则参数
func (s *petService) Params() pet.Params {
	s.paramsMu.RLock()
	defer s.paramsMu.RUnlock()
	return s.params
}

// UpdateParams 替换规则参数，进行中的互动使用旧参数
func (s *petService) UpdateParams(p pet.Params) error {
	if err := p.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrConfigValidate)
	}
	s.paramsMu.Lock()
	s.params = p
	s.paramsMu.Unlock()

	s.logger.Info("宠物规则参数已更新",
		zap.Int64("seconds_per_decay", p.SecondsPerDecay),
		zap.Int64("cost_feed", p.CostFeed),
		zap.Int64("cost_train", p.CostTrain),
		zap.Int64("reward_clean", p.RewardClean),
	)
	return nil
}

func (s *petService) now() int64 {
	return s.clock.Now().Unix()
}

// InitializePet 创建宠物
func (s *petService) InitializePet(ctx context.Context, caller, petID string) (*PetView, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "pet_id 不能为空")
	}
	if caller == "" {
		return nil, apperrors.New(apperrors.ErrAuthentication)
	}

	params := s.Params()
	now := s.now()
	state := params.Initial
	state.LastObservedAt = now

	p := &models.Pet{PetID: petID, Owner: caller}
	p.SetState(state)

	if err := s.repos.Pet().Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("宠物创建成功",
		zap.String("pet_id", petID),
		zap.String("owner", caller),
		zap.Int64("observed_at", now),
	)

	return &PetView{
		PetID:      p.PetID,
		Owner:      p.Owner,
		State:      state,
		ObservedAt: now,
	}, nil
}

// GetPet 返回衰减后的视图
func (s *petService) GetPet(ctx context.Context, petID string) (*PetView, error) {
	p, err := s.repos.Pet().FindByPetID(ctx, petID)
	if err != nil {
		return nil, err
	}
	return s.view(p, s.Params(), s.now()), nil
}

// ListPets 列出主人的宠物
func (s *petService) ListPets(ctx context.Context, owner string, page, pageSize int) ([]*PetView, int64, error) {
	pagination := repository.NewPagination(page, pageSize)
	pets, err := s.repos.Pet().ListByOwner(ctx, owner, pagination)
	if err != nil {
		return nil, 0, err
	}

	params, now := s.Params(), s.now()
	views := make([]*PetView, 0, len(pets))
	for _, p := range pets {
		views = append(views, s.view(p, params, now))
	}
	return views, pagination.Total, nil
}

func (s *petService) view(p *models.Pet, params pet.Params, now int64) *PetView {
	state, res := params.Decay(p.State(), now)
	if res.Regressed {
		s.logger.Warn("时钟回退，按零周期处理",
			zap.String("pet_id", p.PetID),
			zap.Int64("now", now),
			zap.Int64("last_observed_at", p.LastObservedAt),
		)
	}
	return &PetView{
		PetID:          p.PetID,
		Owner:          p.Owner,
		State:          state,
		PendingRewards: p.PendingRewards,
		ObservedAt:     now,
		Intervals:      res.Intervals,
	}
}

// Interact 执行一次互动
func (s *petService) Interact(ctx context.Context, caller, petID string, kind pet.Kind) (*InteractResult, error) {
	params := s.Params()

	// 未实现的互动在读取和衰减之前就拒绝
	if !params.Supported(kind) {
		return nil, apperrors.New(apperrors.ErrUnsupportedInteraction, kind.String())
	}

	unlock := s.locks.Lock(petID)
	defer unlock()

	now := s.now()
	var result *InteractResult

	err := s.repos.WithTransactionOptions(ctx, interactTxOptions, func(tx *repository.Transaction) error {
		p, err := tx.Pet().LockForUpdate(ctx, petID)
		if err != nil {
			return err
		}
		if p.Owner != caller {
			return apperrors.Newf(apperrors.ErrPetNotOwner, "pet=%s caller=%s", petID, caller)
		}

		out, err := params.Resolve(kind, p.State(), now)
		if out.Decay.Regressed {
			s.logger.Warn("时钟回退，按零周期处理",
				zap.String("pet_id", petID),
				zap.Int64("now", now),
				zap.Int64("last_observed_at", p.LastObservedAt),
			)
		}
		if err != nil {
			return s.mapRuleError(err, kind, out)
		}

		ledgerTx, err := s.settle(ctx, tx, p, kind, out.Settlement)
		if err != nil {
			return err
		}

		if err := tx.Pet().SaveState(ctx, petID, out.Next); err != nil {
			return err
		}

		event := pet.Event{
			ID:        uuid.NewString(),
			PetID:     petID,
			Owner:     p.Owner,
			Action:    kind,
			Name:      kind.String(),
			State:     out.Next,
			Timestamp: now,
		}
		record := &models.PetEvent{
			EventID:    event.ID,
			PetID:      petID,
			Owner:      p.Owner,
			Action:     event.Name,
			Intervals:  out.Decay.Intervals,
			Direction:  string(out.Settlement.Direction),
			Amount:     out.Settlement.Amount,
			Hunger:     uint8(out.Next.Hunger),
			Strength:   uint8(out.Next.Strength),
			Happiness:  uint8(out.Next.Happiness),
			Energy:     uint8(out.Next.Energy),
			OccurredAt: now,
		}
		if err := tx.PetEvent().Create(ctx, record); err != nil {
			return err
		}

		balance, err := s.balanceAfter(ctx, tx, p.Owner, ledgerTx)
		if err != nil {
			return err
		}

		result = &InteractResult{
			Event:       event,
			Decay:       out.Decay,
			Settlement:  out.Settlement,
			Transaction: ledgerTx,
			Balance:     balance,
		}
		return nil
	})
	if err != nil {
		s.logger.Info("宠物互动失败",
			zap.String("pet_id", petID),
			zap.String("caller", caller),
			zap.String("action", kind.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("宠物互动成功",
		zap.String("pet_id", petID),
		zap.String("owner", caller),
		zap.String("action", kind.String()),
		zap.Int("intervals", result.Decay.Intervals),
		zap.String("direction", string(result.Settlement.Direction)),
		zap.Int64("amount", result.Settlement.Amount),
		zap.Int64("balance", result.Balance),
	)

	// 提交之后才发布
	s.sink.Publish(ctx, result.Event)
	return result, nil
}

// settle 按结算方向扣除或发放代币
func (s *petService) settle(ctx context.Context, tx *repository.Transaction, p *models.Pet, kind pet.Kind, st pet.Settlement) (*models.Transaction, error) {
	ref := repository.LedgerRef{
		RefID:       p.PetID,
		RefType:     ledgerRefPet,
		Description: kind.String(),
	}
	switch st.Direction {
	case pet.SettleDebit:
		ref.Type = models.TxTypeBurn
		return tx.Wallet().Debit(ctx, p.Owner, st.Amount, ref)
	case pet.SettleCredit:
		ref.Type = models.TxTypeMint
		return tx.Wallet().Credit(ctx, p.Owner, st.Amount, ref)
	default:
		return nil, nil
	}
}

func (s *petService) balanceAfter(ctx context.Context, tx *repository.Transaction, owner string, ledgerTx *models.Transaction) (int64, error) {
	if ledgerTx != nil {
		return ledgerTx.AfterBalance, nil
	}
	w, err := tx.Wallet().FindByOwner(ctx, owner)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrWalletNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return w.Balance, nil
}

// mapRuleError 把规则层错误转换为应用错误码
func (s *petService) mapRuleError(err error, kind pet.Kind, out pet.Outcome) error {
	switch {
	case errors.Is(err, pet.ErrTired):
		return apperrors.Newf(apperrors.ErrPetTired, "energy=%d", out.Decayed.Energy)
	case errors.Is(err, pet.ErrUnsupportedInteraction):
		return apperrors.New(apperrors.ErrUnsupportedInteraction, kind.String())
	default:
		return apperrors.Wrap(err, apperrors.ErrUnknown)
	}
}

// ListEvents 宠物互动历史
func (s *petService) ListEvents(ctx context.Context, petID string, page, pageSize int) ([]*models.PetEvent, int64, error) {
	if _, err := s.repos.Pet().FindByPetID(ctx, petID); err != nil {
		return nil, 0, err
	}
	pagination := repository.NewPagination(page, pageSize)
	list, err := s.repos.PetEvent().ListByPet(ctx, petID, pagination)
	if err != nil {
		return nil, 0, err
	}
	return list, pagination.Total, nil
}

// ListLedger 宠物的代币流水，按发生顺序
func (s *petService) ListLedger(ctx context.Context, caller, petID string) ([]*models.Transaction, error) {
	p, err := s.repos.Pet().FindByPetID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if p.Owner != caller {
		return nil, apperrors.Newf(apperrors.ErrPetNotOwner, "pet=%s caller=%s", petID, caller)
	}
	return s.repos.TransactionRepo().FindByRef(ctx, ledgerRefPet, petID)
}
