package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type borrowerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func (a *API) listBorrowers(c *gin.Context) {
	borrowers, err := a.borrowers.ListBorrowers()
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, borrowers)
}

func (a *API) addBorrower(c *gin.Context) {
	var req borrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid borrower data"})
		return
	}
	borrower, err := a.borrowers.RegisterBorrower(req.Name, req.Email)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Borrower added successfully",
		"added":   gin.H{"borrower": borrower},
	})
}

func (a *API) updateBorrower(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req borrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid borrower data"})
		return
	}
	if err := a.borrowers.UpdateBorrower(id, req.Name, req.Email); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Borrower updated successfully"})
}

func (a *API) deleteBorrower(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := a.borrowers.DeleteBorrower(id); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Borrower deleted successfully",
		"Deleted_ID": id,
	})
}
