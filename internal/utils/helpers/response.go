package helpers

import (
	"encoding/json"
	"net/http"

	"travelblog/internal/query"
)

// Response — единый конверт ответа API.
type Response struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Count      *int              `json:"count,omitempty"`
	Total      *int64            `json:"total,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(resp)
	if err != nil {
		return
	}
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Response{Success: true, Data: data})
}

// Message — успешный ответ без данных.
func Message(w http.ResponseWriter, status int, msg string) {
	write(w, status, Response{Success: true, Message: msg})
}

// Collection — простой список без пагинации (count = длина).
func Collection(w http.ResponseWriter, data interface{}, count int) {
	write(w, http.StatusOK, Response{Success: true, Data: data, Count: &count})
}

// List — страница списка с пагинацией.
func List(w http.ResponseWriter, res query.Result) {
	count, total, p := res.Count, res.Total, res.Pagination
	write(w, http.StatusOK, Response{
		Success:    true,
		Data:       res.Data,
		Count:      &count,
		Total:      &total,
		Pagination: &p,
	})
}

type tokenResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    interface{} `json:"user"`
}

// Token — ответ входа и регистрации: токен и пользователь на верхнем уровне.
func Token(w http.ResponseWriter, status int, token string, user interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(tokenResponse{Success: true, Token: token, User: user})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	write(w, status, Response{Success: false, Message: errMsg})
}
