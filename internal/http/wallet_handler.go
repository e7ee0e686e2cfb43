// README: Wallet endpoints: balance and transaction history for the caller.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridenow/internal/http/middleware"
	"ridenow/internal/modules/wallet"
)

type WalletHandler struct {
	wallets *wallet.Service
}

func NewWalletHandler(svc *wallet.Service) *WalletHandler {
	return &WalletHandler{wallets: svc}
}

func (h *WalletHandler) Get(c *gin.Context) {
	w, err := h.wallets.FindByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WalletHandler) Transactions(c *gin.Context) {
	limit, offset := pageParams(c)
	txs, err := h.wallets.Transactions(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}
