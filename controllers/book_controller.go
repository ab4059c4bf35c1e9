package controllers

import (
	"net/http"

	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

// GET /api/books
func (bc *BookController) List(c *gin.Context) {
	books, err := bc.Catalog.ListBooks(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]BookView, 0, len(books))
	for i := range books {
		out = append(out, NewBookView(&books[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/books/:id
func (bc *BookController) Retrieve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	b, err := bc.Catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookView(b))
}

// POST /api/books (admin)
func (bc *BookController) Create(c *gin.Context) {
	var in struct {
		Title     string          `json:"title"`
		Author    string          `json:"author"`
		Cover     models.Cover    `json:"cover"`
		Inventory uint            `json:"inventory"`
		DailyFee  decimal.Decimal `json:"daily_fee"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindError(c, err)
		return
	}
	b := &models.Book{
		Title:     in.Title,
		Author:    in.Author,
		Cover:     in.Cover,
		Inventory: in.Inventory,
		DailyFee:  in.DailyFee,
	}
	if err := bc.Catalog.AddBook(c.Request.Context(), b); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookView(b))
}

// PATCH /api/books/:id (admin). Inventory is only moved by loans.
func (bc *BookController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		Title     *string          `json:"title"`
		Author    *string          `json:"author"`
		Cover     *models.Cover    `json:"cover"`
		DailyFee  *decimal.Decimal `json:"daily_fee"`
		Inventory *uint            `json:"inventory"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindError(c, err)
		return
	}
	if in.Inventory != nil {
		writeError(c, &lending.FieldError{
			Field:   "inventory",
			Message: "Inventory changes only through borrowing and returning.",
			Err:     lending.ErrInvalidInput,
		})
		return
	}

	b, err := bc.Catalog.UpdateBook(c.Request.Context(), id, lending.BookDetails{
		Title:    in.Title,
		Author:   in.Author,
		Cover:    in.Cover,
		DailyFee: in.DailyFee,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookView(b))
}
