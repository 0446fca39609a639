package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	walletmapper "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/adapters/http/mapper"
	walletports "github.com/Apurer/go-gin-shop-server/internal/domains/wallets/ports"
)

// WalletAPI wires HTTP transport with the wallet ledger.
type WalletAPI struct {
	service walletports.Service
}

// NewWalletAPI creates a WalletAPI backed by the provided service.
func NewWalletAPI(service walletports.Service) WalletAPI {
	return WalletAPI{service: service}
}

// Get /v1/wallet
// Returns the caller's balance
func (api *WalletAPI) GetWallet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	balance, err := api.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, walletmapper.FromBalance(userID, balance))
}

// Post /v1/wallet/deposits
// Adds funds to the caller's wallet
func (api *WalletAPI) Deposit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var payload walletmapper.DepositInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	txn, err := api.service.AddFunds(c.Request.Context(), userID, payload.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, walletmapper.FromDomainTransaction(txn))
}

// Get /v1/wallet/transactions
// Lists the caller's ledger
func (api *WalletAPI) ListTransactions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	list, err := api.service.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, walletmapper.FromDomainTransactions(list))
}
