package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/lending/internal/catalogimport"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{target: library.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
	{target: library.ErrSystemNotInitialized, status: http.StatusConflict, code: "not_initialized"},
	{target: library.ErrAlreadyExists, status: http.StatusConflict, code: "already_exists"},
	{target: library.ErrOutstandingLoans, status: http.StatusConflict, code: "outstanding_loans"},
	{target: library.ErrNullMember, status: http.StatusUnprocessableEntity, code: "null_member"},
	{target: library.ErrTooManyBorrowed, status: http.StatusUnprocessableEntity, code: "too_many_borrowed"},
	{target: library.ErrOutOfStock, status: http.StatusUnprocessableEntity, code: "out_of_stock"},
	{target: library.ErrLowBalance, status: http.StatusUnprocessableEntity, code: "low_balance"},
	{target: library.ErrInvalidTitle, status: http.StatusBadRequest, code: "invalid_title"},
	{target: library.ErrInvalidAuthors, status: http.StatusBadRequest, code: "invalid_authors"},
	{target: library.ErrInvalidPublishedYear, status: http.StatusBadRequest, code: "invalid_published_year"},
	{target: library.ErrInvalidEditionID, status: http.StatusBadRequest, code: "invalid_edition"},
	{target: library.ErrInvalidStock, status: http.StatusBadRequest, code: "invalid_stock"},
	{target: library.ErrInvalidMemberName, status: http.StatusBadRequest, code: "invalid_member_name"},
	{target: library.ErrInvalidAmount, status: http.StatusBadRequest, code: "invalid_amount"},
	{target: library.ErrInvalidDiscountRate, status: http.StatusBadRequest, code: "invalid_discount_rate"},
	{target: library.ErrInvalidLateFee, status: http.StatusBadRequest, code: "invalid_late_fee"},
	{target: catalogimport.ErrInvalidRecord, status: http.StatusBadRequest, code: "invalid_record"},
}

// classify maps a service error onto an HTTP status and a stable code.
func classify(err error) (int, string) {
	for _, mapping := range errorMappings {
		if errors.Is(err, mapping.target) {
			return mapping.status, mapping.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}
