package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"slidecast/config"
	"slidecast/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:              "8080",
		TempDir:           t.TempDir(),
		ScriptProvider:    "openai",
		OpenAIAPIKey:      "test-key",
		OpenAIModel:       "gpt-4",
		ElevenLabsAPIKeys: []string{"test-key"},
		ElevenLabsVoiceID: "test-voice",
		ElevenLabsModelID: "eleven_multilingual_v2",
		VoiceStability:    0.5,
		VoiceSimilarity:   0.75,
		VideoResolution:   "1280x720",
		VideoPreset:       "fast",
		MinSlideSeconds:   5.0,
		MaxSectionChars:   100,
	}

	h, err := NewWebinarHandler(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.PUT("/sessions/:id", h.UpdateSession)
	api.POST("/sessions/:id/sections", h.AddSection)
	api.PUT("/sessions/:id/sections/:index", h.UpdateSection)
	api.PUT("/sessions/:id/script", h.UpdateScript)
	api.POST("/sessions/:id/images", h.UploadImages)
	api.GET("/sessions/:id/durations", h.ProposeDurations)
	api.POST("/sessions/:id/render", h.RenderVideo)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/sessions", models.CreateSessionRequest{
		Intro:      "Welcome to the webinar.",
		Conclusion: "Thanks for joining.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var session models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.ID)
	return session.ID
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	// Add two sections
	for i, body := range []string{"Point one", "Point two"} {
		w := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/sections", models.SectionRequest{
			Body: body, Notes: "keep it short",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), fmt.Sprintf(`"index":%d`, i))
	}

	// Edit the second section
	w := doJSON(t, router, http.MethodPut, "/api/sessions/"+id+"/sections/1", models.SectionRequest{
		Body: "Point two, revised",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Accept a user-written script without calling the generator
	w = doJSON(t, router, http.MethodPut, "/api/sessions/"+id+"/script", models.UpdateScriptRequest{
		Script: "Welcome. Point one. Point two. Goodbye.",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Session reflects accumulated state
	w = doJSON(t, router, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Len(t, session.Sections, 2)
	assert.Equal(t, "Point two, revised", session.Sections[1].Body)
	assert.NotEmpty(t, session.Script)
}

func TestSessionNotFound(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddSectionTooLong(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/sections", models.SectionRequest{
		Body: strings.Repeat("x", 101),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSectionOutOfRange(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	w := doJSON(t, router, http.MethodPut, "/api/sessions/"+id+"/sections/5", models.SectionRequest{Body: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStepOrderEnforced(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	// Durations and render both need narration first
	w := doJSON(t, router, http.MethodGet, "/api/sessions/"+id+"/durations", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/render", models.RenderRequest{
		Durations: []float64{5, 5},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUploadImagesMissingSlide(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	// One section -> three slides expected; only the intro is sent
	w := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/sections", models.SectionRequest{Body: "Point one"})
	require.Equal(t, http.StatusCreated, w.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("intro", "intro.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a real jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "section_1")
}
