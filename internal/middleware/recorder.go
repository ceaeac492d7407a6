package middleware

import (
	"net/http"

	"travelblog/internal/models"

	"github.com/gorilla/mux"
)

// statusRecorder запоминает код ответа и пользователя запроса. Metrics и Logging
// используют один и тот же экземпляр.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	user        *models.User
}

func recorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Unwrap нужен http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func markUser(w http.ResponseWriter, u *models.User) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.user = u
	}
}

// routeTemplate — шаблон маршрута mux (/api/blogs/{id}), чтобы не плодить метки по id.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
