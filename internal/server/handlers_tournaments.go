package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pokerhub/internal/eligibility"
	"pokerhub/internal/store"
	"pokerhub/internal/tournament"
	"pokerhub/models"
)

type createTournamentRequest struct {
	Name   string                  `json:"name" binding:"required,min=1,max=64"`
	Config models.TournamentConfig `json:"config"`
}

func (s *Server) handleCreateTournament(c *gin.Context) {
	var req createTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	ts, err := s.tournaments.Create(c.Request.Context(), c.GetString("user_id"), req.Name, req.Config)
	if err != nil {
		writeTournamentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ts)
}

func (s *Server) handleListTournaments(c *gin.Context) {
	list, err := s.tournaments.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing tournaments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tournaments": list})
}

func (s *Server) handleGetTournament(c *gin.Context) {
	ts, err := s.tournaments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeTournamentError(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

func (s *Server) handleRegisterTournament(c *gin.Context) {
	entry, err := s.tournaments.Register(c.Request.Context(), c.Param("id"),
		c.GetString("user_id"), c.GetString("user_name"))
	if err != nil {
		writeTournamentError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleStartTournament(c *gin.Context) {
	ts, err := s.tournaments.Start(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		writeTournamentError(c, err)
		return
	}
	for _, tableID := range ts.TableIDs {
		if gs, err := s.store.GetTable(c.Request.Context(), tableID); err == nil {
			s.hub.BroadcastTable(gs)
		}
	}
	c.JSON(http.StatusOK, ts)
}

func (s *Server) handleStandings(c *gin.Context) {
	entries, err := s.tournaments.Standings(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeTournamentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"standings": entries})
}

// handleResults serves the archived standings from SQL, available after
// the live tournament record is long gone.
func (s *Server) handleResults(c *gin.Context) {
	if s.database == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "archive is disabled"})
		return
	}
	results, err := s.database.ResultsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// handlePendingMove pops the caller's table-move notice. The notice is
// consumed by this read; clients reconnect to the new table and call again.
func (s *Server) handlePendingMove(c *gin.Context) {
	notice, err := s.tournaments.PendingMove(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"move": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading move"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"move": notice})
}

func (s *Server) handlePlayerHistory(c *gin.Context) {
	if s.database == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "archive is disabled"})
		return
	}
	history, err := s.database.PlayerHistory(c.Request.Context(), c.GetString("user_id"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func writeTournamentError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tournament.ErrNotCreator):
		status = http.StatusForbidden
	case errors.Is(err, tournament.ErrAlreadyRegistered),
		errors.Is(err, tournament.ErrTournamentFull),
		errors.Is(err, tournament.ErrNotRegistering),
		errors.Is(err, tournament.ErrAlreadyStarted):
		status = http.StatusConflict
	case errors.Is(err, eligibility.ErrNotEligible):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
