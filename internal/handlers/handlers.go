package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"libraryapi/internal/ratelimit"
	"libraryapi/internal/services"
)

// API holds the service dependencies of every handler.
type API struct {
	catalog   services.CatalogService
	borrowers services.BorrowerService
	borrowing services.BorrowingService
	reports   services.ReportService
	log       *logrus.Logger
}

func NewAPI(
	catalog services.CatalogService,
	borrowers services.BorrowerService,
	borrowing services.BorrowingService,
	reports services.ReportService,
	log *logrus.Logger,
) *API {
	return &API{
		catalog:   catalog,
		borrowers: borrowers,
		borrowing: borrowing,
		reports:   reports,
		log:       log,
	}
}

// RegisterRoutes wires the full HTTP surface. The two creation endpoints are
// rate-limited; deleting a book requires the basic-auth challenge.
func (a *API) RegisterRoutes(r *gin.Engine, limiter ratelimit.Limiter, admin gin.Accounts) {
	limited := RateLimit(limiter, a.log)

	books := r.Group("/books")
	books.GET("", a.listBooks)
	books.GET("/search", a.searchBooks)
	books.GET("/:id", a.getBook)
	books.POST("", limited, a.addBook)
	books.PUT("/:id", a.updateBook)
	books.DELETE("/:id", gin.BasicAuth(admin), a.deleteBook)

	borrowers := r.Group("/borrowers")
	borrowers.GET("", a.listBorrowers)
	borrowers.POST("", limited, a.addBorrower)
	borrowers.PUT("/:id", a.updateBorrower)
	borrowers.DELETE("/:id", a.deleteBorrower)

	borrowing := r.Group("/borrowingProcess")
	borrowing.GET("/overdue", a.listOverdue)
	borrowing.GET("/:borrowerId", a.listBorrowedByBorrower)
	borrowing.POST("", a.checkOut)
	borrowing.PUT("/:processId", a.returnBook)

	reports := r.Group("/reports")
	reports.GET("/analytics", a.analyticsByInterval)
	reports.GET("/analytics/lastmonth", a.analyticsLastMonth)
	reports.GET("/analytics/:period", a.analyticsLastNDays)
	reports.GET("/borrowing", a.borrowingHistory)
	reports.GET("/borrowing/overdue", a.overdueLastMonth)
}

// respondError translates the service error taxonomy into an HTTP status.
// Infrastructure failures are logged and answered with a generic message.
func (a *API) respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case services.KindValidation, services.KindConflict, services.KindBusinessRule:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		a.log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	c.JSON(status, gin.H{"message": services.Message(err)})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + param})
		return 0, false
	}
	return uint(id), true
}

func wantsCSV(c *gin.Context) bool {
	return c.Query("format") == "csv"
}
