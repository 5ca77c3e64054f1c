// Package flightapi exposes the flights catalog as a small read-only HTTP
// surface: a paginated listing and a by-number lookup over the seeded
// flight table.
package flightapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
	"github.com/BlackLightinger/rsoi-lab-03/internal/repo"
	"github.com/BlackLightinger/rsoi-lab-03/internal/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// API serves the flights catalog endpoints.
type API struct {
	db *gorm.DB
}

// Register mounts the catalog routes on r.
func Register(r *gin.Engine, db *gorm.DB) {
	a := &API{db: db}
	r.GET("/flights", a.list)
	r.GET("/flights/:flightNumber", a.byNumber)
	r.GET("/manage/health", health)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "operational"})
}

// airportLabel renders the human-readable "City Name" form used on the wire.
func airportLabel(a domain.Airport) string {
	return a.City + " " + a.Name
}

func toFlightInfo(f domain.Flight) domain.FlightInfo {
	return domain.FlightInfo{
		FlightNumber: f.FlightNumber,
		FromAirport:  airportLabel(f.FromAirport),
		ToAirport:    airportLabel(f.ToAirport),
		Date:         f.Datetime,
		Price:        f.Price,
	}
}

func (a *API) list(c *gin.Context) {
	page, size, offset := utils.PageParams(c.Query("page"), c.Query("size"), defaultPageSize, maxPageSize)

	total, err := repo.CountFlights(c.Request.Context(), a.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to count flights"})
		return
	}
	flights, err := repo.ListFlightsPage(c.Request.Context(), a.db, offset, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list flights"})
		return
	}

	items := make([]domain.FlightInfo, 0, len(flights))
	for _, f := range flights {
		items = append(items, toFlightInfo(f))
	}
	c.JSON(http.StatusOK, domain.FlightPage{
		Page:          page,
		PageSize:      size,
		TotalElements: total,
		Items:         items,
	})
}

func (a *API) byNumber(c *gin.Context) {
	number := c.Param("flightNumber")
	f, err := repo.GetFlightByNumber(c.Request.Context(), a.db, number)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Flight not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load flight"})
		return
	}
	c.JSON(http.StatusOK, toFlightInfo(*f))
}
