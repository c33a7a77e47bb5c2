package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"slidecast/config"
	"slidecast/models"
	"slidecast/services"
	"slidecast/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebinarHandler walks a session through the build pipeline: compose
// sections, generate the script, synthesize narration, upload slides,
// adjust timings, render. Every step is synchronous; a failed step leaves
// the session exactly as it was so the user can retry it.
type WebinarHandler struct {
	cfg      *config.Config
	logger   *zap.SugaredLogger
	script   *services.ScriptService
	speech   *services.SpeechService
	timeline *services.TimelineService
	render   *services.RenderService

	sessions map[string]*models.Session
	mu       sync.RWMutex
}

// NewWebinarHandler wires the collaborator clients from config and creates
// the handler
func NewWebinarHandler(cfg *config.Config, logger *zap.SugaredLogger) (*WebinarHandler, error) {
	var generator services.ScriptGenerator
	switch cfg.ScriptProvider {
	case "gemini":
		g, err := services.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKeys[0])
		if err != nil {
			return nil, fmt.Errorf("failed to init gemini generator: %w", err)
		}
		generator = g
	default:
		generator = services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	ttsPool := utils.NewAPIKeyPool(cfg.ElevenLabsAPIKeys)
	timeline := services.NewTimelineService(cfg.MinSlideSeconds)

	return &WebinarHandler{
		cfg:      cfg,
		logger:   logger,
		script:   services.NewScriptService(generator),
		speech:   services.NewSpeechService(ttsPool, cfg.ElevenLabsModelID, cfg.VoiceStability, cfg.VoiceSimilarity, logger),
		timeline: timeline,
		render:   services.NewRenderService(timeline, cfg.VideoResolution, cfg.VideoPreset, cfg.KeyframeInterval, logger),
		sessions: make(map[string]*models.Session),
	}, nil
}

// CreateSession handles POST /api/sessions
func (h *WebinarHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	now := time.Now()
	session := &models.Session{
		ID:         uuid.New().String(),
		Intro:      req.Intro,
		Conclusion: req.Conclusion,
		Sections:   []models.ScriptSection{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	h.mu.Lock()
	h.sessions[session.ID] = session
	h.mu.Unlock()

	h.logger.Infow("session created", "session", session.ID)
	c.JSON(http.StatusCreated, session)
}

// GetSession handles GET /api/sessions/:id
func (h *WebinarHandler) GetSession(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSession handles PUT /api/sessions/:id
func (h *WebinarHandler) UpdateSession(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	var req models.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	h.mu.Lock()
	if req.Intro != nil {
		session.Intro = *req.Intro
	}
	if req.Conclusion != nil {
		session.Conclusion = *req.Conclusion
	}
	session.UpdatedAt = time.Now()
	h.mu.Unlock()

	c.JSON(http.StatusOK, session)
}

// AddSection handles POST /api/sessions/:id/sections
func (h *WebinarHandler) AddSection(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	var req models.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Body) > h.cfg.MaxSectionChars {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Section too long (max %d chars)", h.cfg.MaxSectionChars)})
		return
	}

	h.mu.Lock()
	session.Sections = append(session.Sections, models.ScriptSection{Body: req.Body, Notes: req.Notes})
	session.UpdatedAt = time.Now()
	index := len(session.Sections) - 1
	h.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"index": index})
}

// UpdateSection handles PUT /api/sessions/:id/sections/:index
func (h *WebinarHandler) UpdateSection(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section index"})
		return
	}

	var req models.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Body) > h.cfg.MaxSectionChars {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Section too long (max %d chars)", h.cfg.MaxSectionChars)})
		return
	}

	h.mu.Lock()
	if index >= len(session.Sections) {
		h.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
		return
	}
	session.Sections[index] = models.ScriptSection{Body: req.Body, Notes: req.Notes}
	session.UpdatedAt = time.Now()
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"index": index})
}

// GenerateScript handles POST /api/sessions/:id/script
func (h *WebinarHandler) GenerateScript(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	h.logger.Infow("generating script", "session", session.ID, "sections", len(session.Sections))
	script, err := h.script.ComposeScript(c.Request.Context(), session)
	if err != nil {
		h.logger.Errorw("script generation failed", "session", session.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	session.Script = script
	session.UpdatedAt = time.Now()
	h.mu.Unlock()

	c.JSON(http.StatusOK, models.ScriptResponse{Script: script})
}

// UpdateScript handles PUT /api/sessions/:id/script
func (h *WebinarHandler) UpdateScript(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	var req models.UpdateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	h.mu.Lock()
	session.Script = req.Script
	session.UpdatedAt = time.Now()
	h.mu.Unlock()

	c.JSON(http.StatusOK, models.ScriptResponse{Script: req.Script})
}

// SynthesizeAudio handles POST /api/sessions/:id/audio
func (h *WebinarHandler) SynthesizeAudio(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	if session.Script == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Generate or accept a script first"})
		return
	}

	voiceID := c.DefaultQuery("voice", h.cfg.ElevenLabsVoiceID)

	h.logger.Infow("synthesizing narration", "session", session.ID, "voice", voiceID, "chars", len(session.Script))
	audio, err := h.speech.Synthesize(c.Request.Context(), session.Script, voiceID)
	if err != nil {
		h.logger.Errorw("speech synthesis failed", "session", session.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	sessionDir, err := utils.CreateSessionDir(h.cfg.TempDir, session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	audioPath := filepath.Join(sessionDir, "output_audio.mp3")
	if err := utils.WriteFile(audioPath, audio); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	duration, err := utils.ProbeDuration(c.Request.Context(), audioPath)
	if err != nil {
		h.logger.Errorw("narration probe failed", "session", session.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	session.AudioPath = audioPath
	session.AudioDuration = duration
	session.UpdatedAt = time.Now()
	h.mu.Unlock()

	h.logger.Infow("narration ready", "session", session.ID, "duration", duration)
	c.JSON(http.StatusOK, models.AudioResponse{
		Duration: duration,
		AudioURL: fmt.Sprintf("/api/sessions/%s/audio", session.ID),
	})
}

// DownloadAudio handles GET /api/sessions/:id/audio
func (h *WebinarHandler) DownloadAudio(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	if session.AudioPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Narration not synthesized yet"})
		return
	}
	c.Header("Content-Type", "audio/mpeg")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=narration_%s.mp3", session.ID))
	c.File(session.AudioPath)
}

// UploadImages handles POST /api/sessions/:id/images. The multipart form
// carries "intro", "section_1" through "section_N", and "conclusion"; one
// image per slide, all in one request.
func (h *WebinarHandler) UploadImages(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return
	}

	fields := make([]string, 0, session.SlideCount())
	fields = append(fields, "intro")
	for i := range session.Sections {
		fields = append(fields, fmt.Sprintf("section_%d", i+1))
	}
	fields = append(fields, "conclusion")

	sessionDir, err := utils.CreateSessionDir(h.cfg.TempDir, session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	paths := make([]string, 0, len(fields))
	for _, field := range fields {
		files := form.File[field]
		if len(files) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Missing image %q; expected %d slides", field, len(fields))})
			return
		}
		dest := filepath.Join(sessionDir, field+".jpg")
		if err := utils.SaveUpload(files[0], dest); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		paths = append(paths, dest)
	}

	h.mu.Lock()
	session.ImagePaths = paths
	session.UpdatedAt = time.Now()
	h.mu.Unlock()

	h.logger.Infow("slide images uploaded", "session", session.ID, "count", len(paths))
	c.JSON(http.StatusOK, gin.H{"slides": len(paths)})
}

// ProposeDurations handles GET /api/sessions/:id/durations
func (h *WebinarHandler) ProposeDurations(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	if session.AudioDuration <= 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Synthesize narration first"})
		return
	}

	durations := h.timeline.Allocate(session.SlideTexts(), session.AudioDuration)
	total := 0.0
	for _, d := range durations {
		total += d
	}
	c.JSON(http.StatusOK, models.DurationsResponse{Durations: durations, Total: total})
}

// RenderVideo handles POST /api/sessions/:id/render
func (h *WebinarHandler) RenderVideo(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	if session.AudioPath == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Synthesize narration first"})
		return
	}
	if len(session.ImagePaths) != session.SlideCount() {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Need %d slide images, have %d", session.SlideCount(), len(session.ImagePaths))})
		return
	}

	var req models.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	for i, d := range req.Durations {
		if d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Duration for slide %d must be positive", i+1)})
			return
		}
	}

	durations, err := h.timeline.Normalize(req.Durations, session.AudioDuration)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if len(durations) != len(session.ImagePaths) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": services.ErrSlideCountMismatch.Error()})
		return
	}

	sessionDir := filepath.Join(h.cfg.TempDir, session.ID)
	h.logger.Infow("rendering video", "session", session.ID, "slides", len(durations))
	videoPath, err := h.render.Render(c.Request.Context(), sessionDir, session.ImagePaths, durations, session.AudioPath)
	if err != nil {
		h.logger.Errorw("render failed", "session", session.ID, "error", err)
		if errors.Is(err, services.ErrSlideCountMismatch) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	session.VideoPath = videoPath
	session.UpdatedAt = time.Now()
	h.mu.Unlock()

	h.logger.Infow("render complete", "session", session.ID, "video", videoPath)
	c.JSON(http.StatusOK, models.RenderResponse{
		VideoURL: fmt.Sprintf("/api/sessions/%s/video", session.ID),
		Duration: session.AudioDuration,
	})
}

// DownloadVideo handles GET /api/sessions/:id/video
func (h *WebinarHandler) DownloadVideo(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	if session.VideoPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not rendered yet"})
		return
	}

	c.Header("Content-Type", "video/mp4")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=final_video_%s.mp4", session.ID))
	c.File(session.VideoPath)

	utils.ScheduleCleanup(h.cfg.TempDir, session.ID, 1*time.Hour)
}

// lookup resolves the :id path parameter, writing a 404 on a miss
func (h *WebinarHandler) lookup(c *gin.Context) (*models.Session, bool) {
	h.mu.RLock()
	session, exists := h.sessions[c.Param("id")]
	h.mu.RUnlock()

	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return session, true
}
