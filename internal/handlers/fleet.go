package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"machine_monitor/internal/fleet"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusRepaired = "repaired"
	statusNoop     = "already_operational"

	errGetFleet       = "failed to load fleet"
	errRepairMachine  = "failed to repair machine"
	errUnknownMachine = "unknown machine"
	errTickHistory    = "failed to load tick history"
	errLimitInvalid   = "invalid 'limit'; use a positive integer"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// machineError maps an unknown machine to 404 and anything else to 500.
func (h *Handler) machineError(c *gin.Context, userMsg, logKey string, err error, id string) {
	if errors.Is(err, fleet.ErrUnknownMachine) {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownMachine, "machine": id})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err, "machine", id)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get fleet snapshot
// @Description  Tick count, totals and every machine with its status and scrap history
// @Tags         fleet
// @Produce      json
// @Success      200  {object}  models.FleetSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fleet [get]
// @Security     BearerAuth
func (h *Handler) getFleet(c *gin.Context) {
	snap, err := h.services.Monitoring.GetFleet(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetFleet, "fleet_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Get machine
// @Tags         fleet
// @Produce      json
// @Param        id   path      string  true  "Machine name"  example(I30)
// @Success      200  {object}  models.MachineState
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fleet/machines/{id} [get]
// @Security     BearerAuth
func (h *Handler) getMachine(c *gin.Context) {
	id := c.Param("id")
	m, err := h.services.Monitoring.GetMachine(c.Request.Context(), id)
	if err != nil {
		h.machineError(c, errGetFleet, "machine_get_failed", err, id)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary      Repair machine
// @Description  Clears the fault of a broken machine. Repairing an operational machine changes nothing.
// @Tags         fleet
// @Produce      json
// @Param        id   path      string  true  "Machine name"  example(I30)
// @Success      200  {object}  map[string]interface{}  "status, repaired, machine"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fleet/machines/{id}/repair [post]
// @Security     BearerAuth
func (h *Handler) repairMachine(c *gin.Context) {
	id := c.Param("id")
	res, err := h.services.Fleet.Repair(c.Request.Context(), id)
	if err != nil {
		h.machineError(c, errRepairMachine, "machine_repair_failed", err, id)
		return
	}
	status := statusRepaired
	if !res.Repaired {
		status = statusNoop
	}
	if h.log != nil {
		op, _ := operatorID(c)
		h.log.Infow("repair_requested", "machine", id, "operator", op, "repaired", res.Repaired)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"repaired": res.Repaired,
		"machine":  res.Machine,
	})
}

// @Summary      Tick history
// @Description  Per-tick totals of the current run, oldest first
// @Tags         fleet
// @Produce      json
// @Param        limit  query     int  false  "Newest N ticks (default 100, max 1000)"
// @Success      200    {object}  map[string]interface{}  "count, ticks"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/fleet/ticks [get]
// @Security     BearerAuth
func (h *Handler) getTickHistory(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		limit = v
	}
	ticks, err := h.services.Monitoring.GetTickHistory(c.Request.Context(), limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errTickHistory, "tick_history_failed", err, "limit", limit)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(ticks),
		"ticks": ticks,
	})
}
