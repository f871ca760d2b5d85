package handler

import (
	"magic-villa-api/internal/model/requestresponse"
	"magic-villa-api/internal/util"
	"net/http"
)

const (
	msgInvalidInput       = "Invalid Input"
	msgInvalidCredentials = "Username or password is incorrect"
	msgTokenInvalid       = "Token invalid"
	msgInternalError      = "Internal server error"
	msgUnauthorized       = "Unauthorized"
)

func sendResponse(w http.ResponseWriter, statusCode int, result interface{}) {
	util.WriteJSON(w, statusCode, requestresponse.ApiResponse{
		StatusCode:    statusCode,
		IsSuccess:     true,
		ErrorMessages: []string{},
		Result:        result,
	})
}

func sendErrorResponse(w http.ResponseWriter, statusCode int, messages ...string) {
	util.WriteJSON(w, statusCode, requestresponse.ApiResponse{
		StatusCode:    statusCode,
		IsSuccess:     false,
		ErrorMessages: messages,
	})
}
