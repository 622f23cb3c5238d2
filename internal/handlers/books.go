package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryapi/internal/services"
)

type bookRequest struct {
	Title             string `json:"title" binding:"required"`
	Author            string `json:"author" binding:"required"`
	ISBN              string `json:"ISBN" binding:"required"`
	AvailableQuantity int    `json:"available_quantity" binding:"min=0"`
	ShelfLocation     string `json:"shelf_location"`
}

func (r bookRequest) toInput() services.BookInput {
	return services.BookInput{
		Title:             r.Title,
		Author:            r.Author,
		ISBN:              r.ISBN,
		AvailableQuantity: r.AvailableQuantity,
		ShelfLocation:     r.ShelfLocation,
	}
}

func (a *API) listBooks(c *gin.Context) {
	books, err := a.catalog.ListBooks()
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (a *API) getBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	book, err := a.catalog.GetBook(id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (a *API) searchBooks(c *gin.Context) {
	books, err := a.catalog.SearchBooks(c.Query("title"), c.Query("author"), c.Query("ISBN"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (a *API) addBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid book data"})
		return
	}
	book, err := a.catalog.AddBook(req.toInput())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Book added successfully",
		"added":   gin.H{"book": book},
	})
}

func (a *API) updateBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid book data"})
		return
	}
	if err := a.catalog.UpdateBook(id, req.toInput()); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book updated successfully"})
}

func (a *API) deleteBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := a.catalog.DeleteBook(id); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Book deleted successfully",
		"ID":      id,
	})
}
