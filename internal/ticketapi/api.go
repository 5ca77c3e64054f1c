// Package ticketapi exposes the tickets store as an entity-shaped CRUD
// surface keyed by ticket UID. Responses use the persistence field names
// (snake_case); the gateway reshapes them for its own clients.
package ticketapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
	"github.com/BlackLightinger/rsoi-lab-03/internal/repo"
)

// API serves the tickets store endpoints.
type API struct {
	db *gorm.DB
}

// Register mounts the tickets routes on r.
func Register(r *gin.Engine, db *gorm.DB) {
	a := &API{db: db}
	r.GET("/tickets/user/:username", a.listForUser)
	r.GET("/tickets/:ticketUid", a.byUID)
	r.POST("/tickets", a.create)
	r.DELETE("/tickets/:ticketUid", a.remove)
	r.GET("/manage/health", health)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "operational"})
}

func parseUID(c *gin.Context) (uuid.UUID, bool) {
	uid, err := uuid.Parse(c.Param("ticketUid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid ticket uid"})
		return uuid.Nil, false
	}
	return uid, true
}

func (a *API) listForUser(c *gin.Context) {
	tickets, err := repo.ListTicketsByUsername(c.Request.Context(), a.db, c.Param("username"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list tickets"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (a *API) byUID(c *gin.Context) {
	uid, ok := parseUID(c)
	if !ok {
		return
	}
	t, err := repo.GetTicketByUID(c.Request.Context(), a.db, uid)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load ticket"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *API) create(c *gin.Context) {
	var req domain.TicketCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if req.TicketUID == uuid.Nil || req.Username == "" || req.FlightNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ticketUid, username and flightNumber are required"})
		return
	}

	t := domain.Ticket{
		TicketUID:    req.TicketUID,
		Username:     req.Username,
		FlightNumber: req.FlightNumber,
		Price:        req.Price,
		Status:       domain.TicketPaid,
	}
	err := repo.CreateTicket(c.Request.Context(), a.db, &t)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		c.JSON(http.StatusForbidden, gin.H{"message": "Ticket already exists"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create ticket"})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (a *API) remove(c *gin.Context) {
	uid, ok := parseUID(c)
	if !ok {
		return
	}
	err := repo.DeleteTicketByUID(c.Request.Context(), a.db, uid)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete ticket"})
		return
	}
	c.Status(http.StatusNoContent)
}
