package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

// 被停用的账号访问任何已登录接口都要被拦截，正常账号照常放行
func TestPreventDisabledUser(t *testing.T) {
	h := &Handler{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/teachers", nil)
	req = req.WithContext(context.WithValue(req.Context(), MyInfoCtx, &domain.User{IsActive: false}))
	rec := httptest.NewRecorder()
	h.preventDisabledUser(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := Response{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.False(t, resp.Success)
	require.Equal(t, "账号已被停用", resp.Message)

	req = httptest.NewRequest(http.MethodGet, "/teachers", nil)
	req = req.WithContext(context.WithValue(req.Context(), MyInfoCtx, &domain.User{IsActive: true}))
	rec = httptest.NewRecorder()
	h.preventDisabledUser(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCSVAttachment(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.csvAttachment(rec, "AB01.csv", []byte("DAY,9:00 - 9:55\n"))

	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Equal(t, "attachment; filename=AB01.csv", rec.Header().Get("Content-Disposition"))
	require.Equal(t, "DAY,9:00 - 9:55\n", rec.Body.String())
}
