package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wfunc/pet-game/internal/repository"
	"github.com/wfunc/pet-game/internal/service"
)

// WalletHandler 钱包处理器
type WalletHandler struct {
	wallets service.WalletService
}

// NewWalletHandler 创建钱包处理器
func NewWalletHandler(wallets service.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// GetBalance 获取余额
// GET /api/v1/wallet/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	summary, err := h.wallets.Summary(c.Request.Context(), owner)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, summary)
}

// GetTransactions 交易流水
// GET /api/v1/wallet/transactions
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	page, size := pageParams(c)
	list, total, err := h.wallets.ListTransactions(c.Request.Context(), owner, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	p := repository.NewPagination(page, size)
	ok(c, ListResponse{Items: list, Total: total, Page: p.Page, PageSize: p.PageSize})
}

// GetTransaction 查询单笔流水
// GET /api/v1/wallet/transactions/:order_no
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	owner, exists := caller(c)
	if !exists {
		return
	}

	record, err := h.wallets.GetTransaction(c.Request.Context(), owner, c.Param("order_no"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, record)
}
