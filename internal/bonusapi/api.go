// Package bonusapi exposes the loyalty ledger: account lookup, history
// listing, and the append/revert operations that keep the account balance
// equal to the signed sum of its present entries.
package bonusapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
	"github.com/BlackLightinger/rsoi-lab-03/internal/repo"
)

// API serves the loyalty ledger endpoints.
type API struct {
	db *gorm.DB
}

// Register mounts the loyalty routes on r.
func Register(r *gin.Engine, db *gorm.DB) {
	a := &API{db: db}
	r.GET("/privilege/:username", a.account)
	r.GET("/privilege/:username/history", a.history)
	r.GET("/privilege/:username/history/:ticketUid", a.historyItem)
	r.POST("/privilege/:username/history", a.append)
	r.DELETE("/privilege/:username/history/:ticketUid", a.revert)
	r.GET("/manage/health", health)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "operational"})
}

func (a *API) loadAccount(c *gin.Context) (*domain.Privilege, bool) {
	p, err := repo.GetPrivilegeByUsername(c.Request.Context(), a.db, c.Param("username"))
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Privilege not found"})
		return nil, false
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load privilege"})
		return nil, false
	}
	return p, true
}

func parseUID(c *gin.Context) (uuid.UUID, bool) {
	uid, err := uuid.Parse(c.Param("ticketUid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid ticket uid"})
		return uuid.Nil, false
	}
	return uid, true
}

func (a *API) account(c *gin.Context) {
	p, ok := a.loadAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) history(c *gin.Context) {
	p, ok := a.loadAccount(c)
	if !ok {
		return
	}
	entries, err := repo.ListHistory(c.Request.Context(), a.db, p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list history"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (a *API) historyItem(c *gin.Context) {
	p, ok := a.loadAccount(c)
	if !ok {
		return
	}
	uid, ok := parseUID(c)
	if !ok {
		return
	}
	entry, err := repo.GetHistoryItem(c.Request.Context(), a.db, p.ID, uid)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "History entry not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load history entry"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (a *API) append(c *gin.Context) {
	var req domain.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if !req.OperationType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown operation type"})
		return
	}
	if req.TicketUID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ticket_uid is required"})
		return
	}

	when := req.Datetime
	if when.IsZero() {
		when = time.Now().UTC()
	}
	entry := domain.PrivilegeHistory{
		TicketUID:     req.TicketUID,
		Datetime:      when,
		BalanceDiff:   req.BalanceDiff,
		OperationType: req.OperationType,
	}
	err := repo.AppendHistory(c.Request.Context(), a.db, c.Param("username"), &entry)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Privilege not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to append history"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (a *API) revert(c *gin.Context) {
	uid, ok := parseUID(c)
	if !ok {
		return
	}
	err := repo.RevertHistory(c.Request.Context(), a.db, c.Param("username"), uid)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "History entry not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to revert history"})
		return
	}
	c.Status(http.StatusNoContent)
}
