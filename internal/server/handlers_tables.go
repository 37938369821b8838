package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pokerhub/engine"
	"pokerhub/internal/eligibility"
	"pokerhub/internal/locks"
	"pokerhub/internal/store"
	"pokerhub/internal/tournament"
	"pokerhub/models"
)

type createTableRequest struct {
	MaxPlayers    int                 `json:"maxPlayers"`
	StartingChips int                 `json:"startingChips"`
	Levels        []models.BlindLevel `json:"levels"`
	ActionTimeout int                 `json:"actionTimeout"`
}

type joinRequest struct {
	Seat *int `json:"seat"`
}

type actionRequest struct {
	Kind   models.ActionKind `json:"kind" binding:"required"`
	Amount int               `json:"amount"`
}

// withTable runs one mutation under the table lock: load, apply, save,
// broadcast. When the hand just settled on a tournament table the post-hand
// pass runs before the response goes out.
func (s *Server) withTable(c *gin.Context, tableID string, fn func(gs *models.GameState) error) {
	ctx := c.Request.Context()
	release, err := s.locker.TryAcquire(ctx, "table:"+tableID, tableLockTTL)
	if errors.Is(err, locks.ErrLockHeld) {
		c.JSON(http.StatusConflict, gin.H{"error": "table is busy, retry"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lock failure"})
		return
	}
	defer release(ctx)

	gs, err := s.store.GetTable(ctx, tableID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := fn(gs); err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.SaveTable(ctx, gs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saving table"})
		return
	}

	s.afterMutation(ctx, gs)
	c.JSON(http.StatusOK, engine.Project(gs, c.GetString("user_id")))
}

// afterMutation fans the new state out to watchers and, for tournament
// tables that just finished a hand, runs the coordinator pass.
func (s *Server) afterMutation(ctx context.Context, gs *models.GameState) {
	s.hub.BroadcastTable(gs)
	if gs.TournamentID == "" {
		return
	}
	if gs.Phase != models.PhaseShowdown && gs.Phase != models.PhaseFinished {
		return
	}
	if err := s.tournaments.OnHandSettled(ctx, gs.TournamentID, gs.TableID); err != nil {
		s.logger.Error("post-hand pass failed", "tournament", gs.TournamentID, "table", gs.TableID, "err", err)
		return
	}
	// The pass may have reseated players; push the fresh state if the
	// table survived.
	if updated, err := s.store.GetTable(ctx, gs.TableID); err == nil {
		s.hub.BroadcastTable(updated)
	}
}

func (s *Server) handleCreateTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.MaxPlayers == 0 {
		req.MaxPlayers = 6
	}
	if req.StartingChips == 0 {
		req.StartingChips = 1000
	}
	if len(req.Levels) == 0 {
		req.Levels = tournament.DefaultLadder(10, 10, 600)
	}
	if req.ActionTimeout == 0 {
		req.ActionTimeout = 30
	}

	gs, err := engine.NewGameState(uuid.New().String(), models.TableConfig{
		MaxPlayers:    req.MaxPlayers,
		StartingChips: req.StartingChips,
		Levels:        req.Levels,
		ActionTimeout: req.ActionTimeout,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.SaveTable(c.Request.Context(), gs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saving table"})
		return
	}
	s.logger.Info("table created", "table", gs.TableID, "creator", c.GetString("user_id"))
	c.JSON(http.StatusCreated, engine.Project(gs, c.GetString("user_id")))
}

type tableSummary struct {
	TableID    string           `json:"tableId"`
	Phase      models.GamePhase `json:"phase"`
	Seated     int              `json:"seated"`
	MaxPlayers int              `json:"maxPlayers"`
	Tournament string           `json:"tournamentId,omitempty"`
}

func (s *Server) handleListTables(c *gin.Context) {
	ctx := c.Request.Context()
	ids, err := s.store.ListTableIDs(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing tables"})
		return
	}
	summaries := make([]tableSummary, 0, len(ids))
	for _, id := range ids {
		gs, err := s.store.GetTable(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, tableSummary{
			TableID:    gs.TableID,
			Phase:      gs.Phase,
			Seated:     gs.SeatedCount(),
			MaxPlayers: gs.Config.MaxPlayers,
			Tournament: gs.TournamentID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tables": summaries})
}

func (s *Server) handleGetTable(c *gin.Context) {
	gs, err := s.store.GetTable(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, engine.Project(gs, c.GetString("user_id")))
}

func (s *Server) handleJoinTable(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	seat := -1
	if req.Seat != nil {
		seat = *req.Seat
	}
	ctx := c.Request.Context()
	playerID := c.GetString("user_id")
	s.withTable(c, c.Param("id"), func(gs *models.GameState) error {
		checker := eligibility.FromConfig(gs.Config.Eligibility, s.balanceLookup())
		if err := checker.Check(ctx, playerID); err != nil {
			return err
		}
		return engine.AddPlayer(gs, playerID, c.GetString("user_name"), seat)
	})
}

func (s *Server) handleLeaveTable(c *gin.Context) {
	s.withTable(c, c.Param("id"), func(gs *models.GameState) error {
		return engine.RemovePlayer(gs, c.GetString("user_id"))
	})
}

func (s *Server) handleStartTable(c *gin.Context) {
	s.withTable(c, c.Param("id"), func(gs *models.GameState) error {
		if gs.PlayerByID(c.GetString("user_id")) == nil {
			return engine.ErrPlayerNotFound
		}
		return engine.StartGame(gs)
	})
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	playerID := c.GetString("user_id")
	s.withTable(c, c.Param("id"), func(gs *models.GameState) error {
		if err := engine.ProcessAction(gs, playerID, models.Action{Kind: req.Kind, Amount: req.Amount}); err != nil {
			return err
		}
		// A deliberate action clears the timeout strikes.
		if p := gs.PlayerByID(playerID); p != nil {
			p.ConsecutiveTimeouts = 0
		}
		return nil
	})
}

func (s *Server) handleNextHand(c *gin.Context) {
	s.withTable(c, c.Param("id"), func(gs *models.GameState) error {
		if gs.PlayerByID(c.GetString("user_id")) == nil {
			return engine.ErrPlayerNotFound
		}
		return engine.NextHand(gs)
	})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, engine.ErrHandInProgress),
		errors.Is(err, engine.ErrSeatTaken),
		errors.Is(err, engine.ErrTableFull):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrPlayerNotFound),
		errors.Is(err, eligibility.ErrNotEligible):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
