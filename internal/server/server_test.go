package server_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nonlinear_eq/internal/config"
	"nonlinear_eq/internal/server"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Plot.Points = 50
	cfg.StaticDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "index.html"), []byte("<h1>index</h1>"), 0o600))

	srv, err := server.New(cfg, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return srv.Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

type solveBody struct {
	Result *struct {
		Root    float64 `json:"root"`
		Steps   int     `json:"steps"`
		Initial float64 `json:"initial"`
		FX      float64 `json:"fx"`
	} `json:"result"`
	Chart *struct {
		Main   struct{ Xs []float64 } `json:"main"`
		Detail struct{ Xs []float64 } `json:"detail"`
	} `json:"chart"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) solveBody {
	t.Helper()
	var b solveBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestSolve_OK(t *testing.T) {
	h := newHandler(t)

	rec := post(t, h, "/solve", `{"param": "0"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	b := decode(t, rec)
	require.NotNil(t, b.Result)
	assert.InDelta(t, 1.0, b.Result.Root, 0.001)
	require.NotNil(t, b.Chart)
	assert.NotEmpty(t, b.Chart.Main.Xs)
	assert.Len(t, b.Chart.Detail.Xs, 51)
}

func TestSolve_Failures(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
		text   string
	}{
		{"parse", `{"param": "abc"}`, http.StatusBadRequest, "parse-error", "abc"},
		{"no bracket", `{"param": "1e11"}`, http.StatusUnprocessableEntity, "no-bracket-found", "[0.00, 100]"},
		{"no convergence", `{"param": "-0,5"}`, http.StatusUnprocessableEntity, "no-convergence", "1.0000"},
		{"expression", `{"param": "1", "func": "sqrt(x +"}`, http.StatusBadRequest, "expression", "выражении функции"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/solve", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			b := decode(t, rec)
			assert.Nil(t, b.Result)
			assert.Equal(t, tt.kind, b.Kind)
			assert.Contains(t, b.Error, tt.text)
		})
	}
}

func TestSolve_CustomMap(t *testing.T) {
	h := newHandler(t)

	// для a = −0.5 стандартное отображение не сходится, а x = 1/√(x + a) сходится
	rec := post(t, h, "/solve", `{"param": "-0.5", "map_neg": "1 / sqrt(x + a)"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	b := decode(t, rec)
	require.NotNil(t, b.Result)
	assert.InDelta(t, 1.1975, b.Result.Root, 0.01)
}

func TestSolve_BadRequest(t *testing.T) {
	h := newHandler(t)

	assert.Equal(t, http.StatusMethodNotAllowed, get(t, h, "/solve").Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, "/solve", `{`).Code)
}

func TestRun_StreamAndExport(t *testing.T) {
	h := newHandler(t)

	rec := post(t, h, "/start", `{"param": "0"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var started struct {
		ID string    `json:"id"`
		Xs []float64 `json:"xs"`
		Ys []float64 `json:"ys"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	require.NotEmpty(t, started.ID)
	assert.Len(t, started.Ys, len(started.Xs))

	var status struct {
		Done   bool `json:"done"`
		Steps  int  `json:"steps"`
		Result *struct {
			Steps int `json:"steps"`
		} `json:"result"`
	}
	require.Eventually(t, func() bool {
		rec := get(t, h, "/run?id="+started.ID)
		if rec.Code != http.StatusOK {
			return false
		}
		return json.Unmarshal(rec.Body.Bytes(), &status) == nil && status.Done
	}, 5*time.Second, 10*time.Millisecond)
	require.NotNil(t, status.Result)

	// запуск завершён: стрим воспроизводит историю и закрывается
	stream := get(t, h, "/stream?id="+started.ID)
	assert.Equal(t, "text/event-stream", stream.Header().Get("Content-Type"))
	body := stream.Body.String()
	assert.Contains(t, body, `"type":"start"`)
	assert.Contains(t, body, `"type":"step"`)
	assert.Contains(t, body, `"type":"done"`)

	export := get(t, h, "/export?id="+started.ID)
	require.Equal(t, http.StatusOK, export.Code)
	rows, err := csv.NewReader(bytes.NewReader(export.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, status.Steps+1)
	assert.Equal(t, []string{"stage", "k", "x", "next", "|next-x|"}, rows[0])
	assert.Equal(t, "scan", rows[1][0])
	// шаги итераций: одна последняя, достигшая точности, плюс Result.Steps
	assert.Equal(t, status.Result.Steps+1, status.Steps-1)

	assert.Equal(t, http.StatusNoContent, post(t, h, "/stop?id="+started.ID, "").Code)
}

func TestRun_Errors(t *testing.T) {
	h := newHandler(t)

	assert.Equal(t, http.StatusBadRequest, post(t, h, "/start", `{"param": "x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/stream").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/export?id=missing").Code)
	assert.Equal(t, http.StatusNotFound, post(t, h, "/stop?id=missing", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, get(t, h, "/stop?id=missing").Code)
}

func TestRun_FailureEvent(t *testing.T) {
	h := newHandler(t)

	rec := post(t, h, "/start", `{"param": "1e11"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var started struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))

	require.Eventually(t, func() bool {
		return strings.Contains(get(t, h, "/run?id="+started.ID).Body.String(), `"done":true`)
	}, 5*time.Second, 10*time.Millisecond)

	body := get(t, h, "/stream?id="+started.ID).Body.String()
	assert.Contains(t, body, `"type":"error"`)
	assert.Contains(t, body, `"kind":"no-bracket-found"`)
}

func TestStatic(t *testing.T) {
	h := newHandler(t)

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "index")
	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}
