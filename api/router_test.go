package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/techdoc-assistant/api/handler"
	"github.com/fyerfyer/techdoc-assistant/api/model"
	"github.com/fyerfyer/techdoc-assistant/internal/services"
)

// fakeAnswerer 问答服务测试替身
type fakeAnswerer struct {
	answer  string
	sources []string
	err     error
}

func (f *fakeAnswerer) Answer(ctx context.Context, question string) (string, []string, error) {
	if strings.TrimSpace(question) == "" {
		return "", nil, services.ErrEmptyQuestion
	}
	if f.err != nil {
		return "", nil, f.err
	}
	return f.answer, f.sources, nil
}

func newTestRouter(answerer *fakeAnswerer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(handler.NewAskHandler(answerer))
}

func postAsk(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAskSuccess(t *testing.T) {
	router := newTestRouter(&fakeAnswerer{
		answer:  "use go mod init",
		sources: []string{"modules.txt", "intro.txt"},
	})

	w := postAsk(t, router, `{"question": "how do I create a module?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "use go mod init", resp.Answer)
	assert.Equal(t, []string{"modules.txt", "intro.txt"}, resp.Sources)
}

func TestAskEmptySources(t *testing.T) {
	router := newTestRouter(&fakeAnswerer{answer: "answer", sources: nil})

	w := postAsk(t, router, `{"question": "anything"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// sources为空时序列化为[]而不是null
	assert.Contains(t, w.Body.String(), `"sources":[]`)
}

func TestAskEmptyQuestion(t *testing.T) {
	router := newTestRouter(&fakeAnswerer{answer: "x"})

	for _, body := range []string{`{"question": ""}`, `{"question": "   "}`, `{}`} {
		w := postAsk(t, router, body)
		require.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Error)
	}
}

func TestAskMalformedJSON(t *testing.T) {
	router := newTestRouter(&fakeAnswerer{answer: "x"})

	w := postAsk(t, router, `{"question": `)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestAskProviderFailure(t *testing.T) {
	router := newTestRouter(&fakeAnswerer{err: fmt.Errorf("ollama unreachable")})

	w := postAsk(t, router, `{"question": "anything"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestServerSurvivesFailure(t *testing.T) {
	// 一次500之后进程继续服务后续请求
	answerer := &fakeAnswerer{err: fmt.Errorf("temporary failure")}
	router := newTestRouter(answerer)

	w := postAsk(t, router, `{"question": "first"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	answerer.err = nil
	answerer.answer = "recovered"

	w = postAsk(t, router, `{"question": "second"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recovered")
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&fakeAnswerer{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp model.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
