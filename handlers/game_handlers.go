package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"game-forge/models"
	"game-forge/providers"
	"game-forge/sanitize"
	"game-forge/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GameStore is the persistence the handlers need.
type GameStore interface {
	Create(id, html string, record models.GameRecord) (*models.GameRecord, error)
	Read(id string) (string, models.GameRecord, error)
	ReadDocument(id string) (string, error)
	Update(id, html string) (bool, error)
	List() ([]models.GameRecord, error)
}

// Limits are the output budget and sampling settings for code generation.
type Limits struct {
	GenerateMaxTokens int
	UpdateMaxTokens   int
	Temperature       float64
}

// DefaultLimits matches the budgets the service ships with.
func DefaultLimits() Limits {
	return Limits{
		GenerateMaxTokens: 20000,
		UpdateMaxTokens:   32000,
		Temperature:       0.7,
	}
}

// Deps are the collaborators injected into the Handler at startup.
type Deps struct {
	Store    GameStore
	Enhancer providers.TextGenerator // refines raw prompts
	Coder    providers.TextGenerator // writes and revises game code
	Logger   *zap.Logger
	Limits   Limits
	Now      func() time.Time
}

// Handler serves the game API.
type Handler struct {
	store    GameStore
	enhancer providers.TextGenerator
	coder    providers.TextGenerator
	logger   *zap.Logger
	limits   Limits
	now      func() time.Time
}

// New creates a Handler from deps.
func New(deps Deps) *Handler {
	h := &Handler{
		store:    deps.Store,
		enhancer: deps.Enhancer,
		coder:    deps.Coder,
		logger:   deps.Logger,
		limits:   deps.Limits,
		now:      deps.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.limits == (Limits{}) {
		h.limits = DefaultLimits()
	}
	return h
}

// EnhancePromptPayload is the expected payload for the EnhancePrompt handler
type EnhancePromptPayload struct {
	Prompt *string `json:"prompt"`
}

// GenerateGamePayload is the expected payload for the GenerateGame handler
type GenerateGamePayload struct {
	EnhancedPrompt *models.EnhancedPromptInput `json:"enhanced_prompt"`
}

// GenerateGameResponse is returned by GenerateGame.
type GenerateGameResponse struct {
	GameID   string `json:"game_id"`
	HTML     string `json:"html"`
	Title    string `json:"title"`
	FilePath string `json:"file_path"`
}

// UpdateGamePayload is the expected payload for the UpdateGame handler.
// GameID is kept raw: a value of the wrong type only skips persistence.
type UpdateGamePayload struct {
	Feedback    *string         `json:"feedback"`
	CurrentHTML *string         `json:"current_html"`
	GameID      json.RawMessage `json:"game_id"`
}

// gameID returns the game_id as a string. ok is false when it is absent or
// null; a non-string value comes back as "" with ok true.
func (p *UpdateGamePayload) gameID() (id string, ok bool) {
	if len(p.GameID) == 0 || string(p.GameID) == "null" {
		return "", false
	}
	if err := json.Unmarshal(p.GameID, &id); err != nil {
		return "", true
	}
	return id, true
}

// GetGameResponse is returned by GetGame.
type GetGameResponse struct {
	GameID   string            `json:"game_id"`
	HTML     string            `json:"html"`
	Metadata models.GameRecord `json:"metadata"`
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// internalError logs the cause and answers with a generic message only.
func (h *Handler) internalError(c *fiber.Ctx, op string, err error, message string) error {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	var perr *providers.Error
	if errors.As(err, &perr) {
		fields = append(fields, zap.String("provider", perr.Provider))
	}
	h.logger.Error("request failed", fields...)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// EnhancePrompt refines the user's game idea into a detailed concept.
func (h *Handler) EnhancePrompt(c *fiber.Ctx) error {
	payload := new(EnhancePromptPayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, "Cannot parse JSON payload")
	}
	if payload.Prompt == nil {
		return badRequest(c, "Missing 'prompt' in request")
	}
	if strings.TrimSpace(*payload.Prompt) == "" {
		return badRequest(c, "Prompt cannot be empty")
	}

	query, err := providers.EnhancePrompt(*payload.Prompt)
	if err != nil {
		return h.internalError(c, "enhance_prompt", err, "Failed to enhance prompt")
	}
	refined, err := h.enhancer.GenerateText(c.UserContext(), providers.Request{Prompt: query})
	if err != nil {
		return h.internalError(c, "enhance_prompt", err, "Failed to enhance prompt")
	}

	return c.JSON(models.NewEnhancedPrompt(refined))
}

// GenerateGame writes a new game from a concept and stores it.
func (h *Handler) GenerateGame(c *fiber.Ctx) error {
	payload := new(GenerateGamePayload)
	if err := c.BodyParser(payload); err != nil {
		if errors.Is(err, models.ErrUnsupportedPromptShape) {
			return badRequest(c, "'enhanced_prompt' must be a string or an object")
		}
		return badRequest(c, "Cannot parse JSON payload")
	}
	if payload.EnhancedPrompt == nil || payload.EnhancedPrompt.Kind == models.PromptKindNone {
		return badRequest(c, "Missing 'enhanced_prompt' in request")
	}
	if payload.EnhancedPrompt.IsBlank() {
		return badRequest(c, "'enhanced_prompt' cannot be empty")
	}

	concept := payload.EnhancedPrompt.Normalize()
	prompt, err := providers.GeneratePrompt(concept)
	if err != nil {
		return h.internalError(c, "generate_game", err, "Failed to generate game")
	}

	raw, err := h.coder.GenerateText(c.UserContext(), providers.Request{
		Prompt:      prompt,
		MaxTokens:   h.limits.GenerateMaxTokens,
		Temperature: providers.Float64(h.limits.Temperature),
	})
	if err != nil {
		return h.internalError(c, "generate_game", err, "Failed to generate game")
	}
	gameHTML := sanitize.ExtractHTML(h.logger, raw)

	gameID := storage.NewGameID()
	record, err := h.store.Create(gameID, gameHTML, models.NewGameRecord(gameID, concept, h.now()))
	if err != nil {
		return h.internalError(c, "generate_game", err, "Failed to generate game")
	}
	h.logger.Info("game generated",
		zap.String("game_id", gameID),
		zap.String("title", concept.Title),
		zap.Int("html_len", len(gameHTML)))

	return c.JSON(GenerateGameResponse{
		GameID:   gameID,
		HTML:     gameHTML,
		Title:    concept.Title,
		FilePath: record.FilePath,
	})
}

// UpdateGame revises a game from feedback. When game_id names a stored game
// its document is overwritten; otherwise the new HTML is only returned.
func (h *Handler) UpdateGame(c *fiber.Ctx) error {
	payload := new(UpdateGamePayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, "Cannot parse JSON payload")
	}
	if payload.Feedback == nil || payload.CurrentHTML == nil {
		return badRequest(c, "Missing required fields")
	}
	if strings.TrimSpace(*payload.Feedback) == "" {
		return badRequest(c, "Feedback cannot be empty")
	}
	if strings.TrimSpace(*payload.CurrentHTML) == "" {
		return badRequest(c, "Current HTML cannot be empty")
	}

	prompt, err := providers.UpdatePrompt(*payload.CurrentHTML, *payload.Feedback)
	if err != nil {
		return h.internalError(c, "update_game", err, "Failed to update game")
	}

	raw, err := h.coder.GenerateText(c.UserContext(), providers.Request{
		Prompt:      prompt,
		MaxTokens:   h.limits.UpdateMaxTokens,
		Temperature: providers.Float64(h.limits.Temperature),
	})
	if err != nil {
		return h.internalError(c, "update_game", err, "Failed to update game")
	}
	updatedHTML := sanitize.ExtractHTML(h.logger, raw)

	if gameID, ok := payload.gameID(); ok && gameID != "" {
		persisted, err := h.store.Update(gameID, updatedHTML)
		switch {
		case errors.Is(err, storage.ErrInvalidGameID):
			h.logger.Info("update not persisted: invalid game id")
		case err != nil:
			return h.internalError(c, "update_game", err, "Failed to update game")
		case !persisted:
			h.logger.Info("update not persisted: unknown game", zap.String("game_id", gameID))
		default:
			h.logger.Info("game updated", zap.String("game_id", gameID))
		}
	} else if ok {
		h.logger.Info("update not persisted: invalid game id")
	}

	return c.JSON(fiber.Map{"html": updatedHTML})
}

// GetGame returns a stored game and its metadata.
func (h *Handler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("game_id")
	gameHTML, record, err := h.store.Read(gameID)
	switch {
	case errors.Is(err, storage.ErrInvalidGameID):
		return badRequest(c, "Invalid game ID")
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	case err != nil:
		return h.internalError(c, "get_game", err, "Failed to retrieve game")
	}

	return c.JSON(GetGameResponse{
		GameID:   gameID,
		HTML:     gameHTML,
		Metadata: record,
	})
}

// ListGames returns the metadata of every stored game, newest first.
func (h *Handler) ListGames(c *fiber.Ctx) error {
	games, err := h.store.List()
	if err != nil {
		return h.internalError(c, "list_games", err, "Failed to list games")
	}
	return c.JSON(fiber.Map{"games": games})
}

// PlayGame serves the stored game document as a page.
func (h *Handler) PlayGame(c *fiber.Ctx) error {
	gameHTML, err := h.store.ReadDocument(c.Params("game_id"))
	switch {
	case errors.Is(err, storage.ErrInvalidGameID):
		return c.Status(fiber.StatusBadRequest).SendString("Invalid game ID")
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).SendString("Game not found")
	case err != nil:
		h.logger.Error("request failed", zap.String("op", "play_game"), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading game")
	}

	// Fresh read on every request, updates must show up immediately.
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(gameHTML)
}

// Health reports liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// SetupRoutes configures the API routes for the application
func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Post("/enhance_prompt", h.EnhancePrompt)
	app.Post("/generate_game", h.GenerateGame)
	app.Post("/update_game", h.UpdateGame)
	app.Get("/get_game/:game_id", h.GetGame)
	app.Get("/list_games", h.ListGames)
	app.Get("/play_game/:game_id", h.PlayGame)
	app.Get("/health", h.Health)
}
