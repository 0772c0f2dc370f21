package server

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestTimeMiddleware logs every request with its handling time.
func RequestTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		reqTime := time.Since(start)
		logrus.Infof("request time: %v %v: %v", r.Method, r.URL.Path, reqTime)
	})
}
