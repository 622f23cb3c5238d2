package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	BorrowerID uint `json:"borrower_id" binding:"required"`
	BookID     uint `json:"book_id" binding:"required"`
}

func (a *API) checkOut(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "borrower_id and book_id are required"})
		return
	}
	process, err := a.borrowing.CheckOut(req.BorrowerID, req.BookID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Checkout is successful",
		"process_id": process.ProcessID,
	})
}

func (a *API) returnBook(c *gin.Context) {
	id, ok := parseID(c, "processId")
	if !ok {
		return
	}
	if err := a.borrowing.Return(id); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book returned successfully"})
}

func (a *API) listBorrowedByBorrower(c *gin.Context) {
	id, ok := parseID(c, "borrowerId")
	if !ok {
		return
	}
	rows, err := a.borrowing.ListBorrowedByBorrower(id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *API) listOverdue(c *gin.Context) {
	rows, err := a.borrowing.ListOverdue()
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
