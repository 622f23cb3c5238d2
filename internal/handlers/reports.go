package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"libraryapi/internal/models"
	"libraryapi/internal/services"
)

func (a *API) analyticsByInterval(c *gin.Context) {
	startStr, endStr := c.Query("startDate"), c.Query("endDate")
	if startStr == "" || endStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing start or end date"})
		return
	}
	start, err := models.ParseDate(startStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid startDate, expected YYYY-MM-DD"})
		return
	}
	end, err := models.ParseDate(endStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid endDate, expected YYYY-MM-DD"})
		return
	}
	a.renderAnalytics(c, start, end, "custom_analytical_borrowing_report.csv")
}

func (a *API) analyticsLastMonth(c *gin.Context) {
	start, end := services.PreviousMonthWindow(time.Now())
	a.renderAnalytics(c, start, end, "last_month_analytical_borrowing_report.csv")
}

func (a *API) analyticsLastNDays(c *gin.Context) {
	period, err := strconv.Atoi(c.Param("period"))
	if err != nil || period <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "period must be a positive number of days"})
		return
	}
	start, end := services.LastNDaysWindow(time.Now(), period)
	a.renderAnalytics(c, start, end, "analytical_borrowing_report.csv")
}

func (a *API) renderAnalytics(c *gin.Context, start, end models.Date, csvName string) {
	stats, err := a.reports.Aggregate(start, end)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if wantsCSV(c) {
		a.writeCSV(c, csvName,
			[]string{"total_borrowed", "currently_borrowed", "returned"},
			[][]string{{
				strconv.FormatInt(stats.TotalBorrowed, 10),
				strconv.FormatInt(stats.CurrentlyBorrowed, 10),
				strconv.FormatInt(stats.Returned, 10),
			}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reportData": stats})
}

func (a *API) borrowingHistory(c *gin.Context) {
	records, err := a.reports.BorrowingHistory()
	if err != nil {
		a.respondError(c, err)
		return
	}
	if wantsCSV(c) {
		rows := lo.Map(records, func(rec models.LoanRecord, _ int) []string {
			returned := ""
			if rec.ReturnDate != nil {
				returned = rec.ReturnDate.String()
			}
			return []string{
				strconv.FormatUint(uint64(rec.ProcessID), 10),
				strconv.FormatUint(uint64(rec.BorrowerID), 10),
				rec.BorrowerName,
				strconv.FormatUint(uint64(rec.BookID), 10),
				rec.Title,
				rec.CheckOutDate.String(),
				rec.DueDate.String(),
				string(rec.Status),
				returned,
			}
		})
		a.writeCSV(c, "borrowing_data.csv",
			[]string{"process_id", "borrower_id", "borrower_name", "book_id", "title", "check_out_date", "due_date", "status", "return_date"},
			rows)
		return
	}
	c.JSON(http.StatusOK, gin.H{"borrowed": records})
}

func (a *API) overdueLastMonth(c *gin.Context) {
	loans, err := a.reports.OverdueOfPreviousMonth()
	if err != nil {
		a.respondError(c, err)
		return
	}
	if wantsCSV(c) {
		rows := lo.Map(loans, func(loan models.OverdueLoan, _ int) []string {
			return []string{
				strconv.FormatUint(uint64(loan.BorrowerID), 10),
				loan.Name,
				strconv.FormatUint(uint64(loan.BookID), 10),
				loan.Title,
				loan.CheckOutDate.String(),
				loan.DueDate.String(),
			}
		})
		a.writeCSV(c, "overdue_borrows.csv",
			[]string{"borrower_id", "name", "book_id", "title", "check_out_date", "due_date"},
			rows)
		return
	}
	c.JSON(http.StatusOK, gin.H{"due_books": loans})
}
