package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yooputer/eng-tube/pagination"
)

// Stable error codes callers can branch on. One HTTP status per kind; the
// body never carries free text.
const (
	codeUnauthenticated = "unauthenticated"
	codeForbidden       = "forbidden"
	codeNotFound        = "not_found"
	codeConflict        = "conflict"
	codeInvalidArgument = "invalid_argument"
	codeInvalidCursor   = "invalid_cursor"
	codeInternal        = "internal"
)

func abortUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": codeUnauthenticated})
}

func abortForbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": codeForbidden})
}

func abortNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": codeNotFound})
}

func abortConflict(c *gin.Context) {
	c.JSON(http.StatusConflict, gin.H{"error": codeConflict})
}

func abortInvalidArgument(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": codeInvalidArgument})
}

func abortInternal(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": codeInternal})
}

// abortPageError maps pagination failures onto the taxonomy: bad cursors and
// out-of-range limits are the caller's fault, everything else is ours.
func abortPageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pagination.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": codeInvalidCursor})
	case errors.Is(err, pagination.ErrInvalidLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": codeInvalidArgument})
	default:
		abortInternal(c)
	}
}

// pageResponse renders a page with a nullable next_cursor.
func pageResponse(items interface{}, next string) gin.H {
	resp := gin.H{"items": items, "next_cursor": nil}
	if next != "" {
		resp["next_cursor"] = next
	}
	return resp
}
