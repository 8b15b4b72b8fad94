package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the success shape of the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// OK sends a 200 envelope
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created sends a 201 envelope
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Message sends a 200 envelope carrying only a message
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

// OKWithMessage sends a 200 envelope with both data and a message
func OKWithMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}
