package service

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/models"
	"github.com/wfunc/pet-game/internal/repository"
)

// walletService 代币账户服务实现
type walletService struct {
	repos  *repository.Manager
	logger *zap.Logger
}

// NewWalletService 创建代币账户服务
func NewWalletService(repos *repository.Manager, log *zap.Logger) WalletService {
	return &walletService{repos: repos, logger: log}
}

// GetBalance 查询余额，没有账户时返回零余额视图
func (s *walletService) GetBalance(ctx context.Context, owner string) (*models.Wallet, error) {
	w, err := s.repos.Wallet().FindByOwner(ctx, owner)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrWalletNotFound) {
			return &models.Wallet{Owner: owner}, nil
		}
		return nil, err
	}
	return w, nil
}

// Summary 余额汇总，奖励和发放分别统计
func (s *walletService) Summary(ctx context.Context, owner string) (*WalletSummary, error) {
	w, err := s.GetBalance(ctx, owner)
	if err != nil {
		return nil, err
	}

	summary := &WalletSummary{
		Owner:       owner,
		Balance:     w.Balance,
		TotalBurned: w.TotalBurned,
		TotalMinted: w.TotalMinted,
	}
	if w.ID == 0 {
		return summary, nil
	}

	txRepo := s.repos.TransactionRepo()
	if summary.TotalRewarded, err = txRepo.SumByType(ctx, owner, models.TxTypeMint); err != nil {
		return nil, err
	}
	if summary.TotalGranted, err = txRepo.SumByType(ctx, owner, models.TxTypeGrant); err != nil {
		return nil, err
	}
	return summary, nil
}

// GetTransaction 按流水号查询
// 他人的流水按不存在处理
func (s *walletService) GetTransaction(ctx context.Context, owner, orderNo string) (*models.Transaction, error) {
	record, err := s.repos.TransactionRepo().FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if record.Owner != owner {
		return nil, apperrors.New(apperrors.ErrNotFound, "交易记录不存在")
	}
	return record, nil
}

// ListTransactions 流水列表，最新在前
func (s *walletService) ListTransactions(ctx context.Context, owner string, page, pageSize int) ([]*models.Transaction, int64, error) {
	pagination := repository.NewPagination(page, pageSize)
	list, err := s.repos.TransactionRepo().FindByOwner(ctx, owner, pagination)
	if err != nil {
		return nil, 0, err
	}
	return list, pagination.Total, nil
}

// Grant 管理员发放代币
func (s *walletService) Grant(ctx context.Context, operator, owner string, amount int64) (*models.Transaction, error) {
	if owner == "" {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "owner 不能为空")
	}
	if amount <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidAmount, "%d", amount)
	}

	var record *models.Transaction
	err := s.repos.WithTransaction(ctx, func(tx *repository.Transaction) error {
		var err error
		record, err = tx.Wallet().Credit(ctx, owner, amount, repository.LedgerRef{
			Type:        models.TxTypeGrant,
			RefID:       owner,
			RefType:     "grant",
			Description: "管理员发放",
			Metadata:    models.JSONMap{"operator": operator},
		})
		return err
	})
	if err != nil {
		s.logger.Error("代币发放失败",
			zap.String("operator", operator),
			zap.String("owner", owner),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("代币发放成功",
		zap.String("operator", operator),
		zap.String("owner", owner),
		zap.Int64("amount", amount),
		zap.Int64("balance", record.AfterBalance),
		zap.String("order_no", record.OrderNo),
	)
	return record, nil
}
