// controllers/loan_controller.go
package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"Gin_postgres_redis_library/lending"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// POST /api/loans
func (lc *LoanController) Create(c *gin.Context) {
	requester, ok := mustRequester(c)
	if !ok {
		return
	}
	var in struct {
		Book               uint   `json:"book" binding:"required"`
		ExpectedReturnDate string `json:"expected_return_date" binding:"required"`
		// staff only; ignored for everybody else
		BorrowDate string `json:"borrow_date"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindError(c, err)
		return
	}

	expected, err := parseDate("expected_return_date", in.ExpectedReturnDate)
	if err != nil {
		writeError(c, err)
		return
	}
	input := lending.CreateLoanInput{BookID: in.Book, ExpectedReturnDate: expected}
	if in.BorrowDate != "" && requester.Privileged() {
		bd, err := parseDate("borrow_date", in.BorrowDate)
		if err != nil {
			writeError(c, err)
			return
		}
		input.BorrowDate = &bd
	}

	loan, err := lc.Manager.CreateLoan(c.Request.Context(), requester, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewLoanCreateView(loan))
}

// GET /api/loans?is_active=true&user_id=<uuid>
func (lc *LoanController) List(c *gin.Context) {
	requester, ok := mustRequester(c)
	if !ok {
		return
	}
	var f lending.LoanFilter
	if v, ok := c.GetQuery("is_active"); ok {
		active := strings.EqualFold(strings.TrimSpace(v), "true")
		f.IsActive = &active
	}
	// regular requesters are scoped to themselves, so only staff filters are checked
	if v, ok := c.GetQuery("user_id"); ok && v != "" && requester.Privileged() {
		if _, err := uuid.Parse(v); err != nil {
			writeError(c, &lending.FieldError{
				Field:   "user_id",
				Message: "Must be a valid UUID.",
				Err:     lending.ErrInvalidInput,
			})
			return
		}
		f.BorrowerID = &v
	}

	loans, err := lc.Manager.ListLoans(c.Request.Context(), requester, f)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]LoanReadView, 0, len(loans))
	for i := range loans {
		out = append(out, NewLoanReadView(&loans[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/loans/:id
func (lc *LoanController) Retrieve(c *gin.Context) {
	requester, ok := mustRequester(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	loan, err := lc.Manager.GetLoan(c.Request.Context(), requester, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewLoanReadView(loan))
}

// POST /api/loans/:id/return
func (lc *LoanController) Return(c *gin.Context) {
	requester, ok := mustRequester(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		ActualReturnDate string `json:"actual_return_date"`
	}
	// the body is optional; chunked requests report ContentLength -1
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			writeBindError(c, err)
			return
		}
	}

	var input lending.ReturnLoanInput
	if in.ActualReturnDate != "" {
		d, err := parseDate("actual_return_date", in.ActualReturnDate)
		if err != nil {
			writeError(c, err)
			return
		}
		input.ReturnDate = &d
	}

	loan, err := lc.Manager.ReturnLoan(c.Request.Context(), requester, id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewLoanReturnView(loan))
}
