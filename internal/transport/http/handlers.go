package statushttp

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"sarraf/internal/logger"
	"sarraf/internal/report"
	"sarraf/internal/store"
	"sarraf/internal/types"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	signals store.SignalStore
	events  store.EventStore
}

// signalView is the wire shape of a trade signal. Decimals stay strings
// so no precision is lost in transit.
type signalView struct {
	ID                   int64  `json:"id"`
	AssetName            string `json:"asset_name"`
	Pair                 string `json:"pair,omitempty"`
	StrategyName         string `json:"strategy_name,omitempty"`
	Status               string `json:"status"`
	EntryPrice           string `json:"entry_price"`
	ExitPrice            string `json:"exit_price"`
	BuyClientOrderID     string `json:"buy_client_order_id,omitempty"`
	SellClientOrderID    string `json:"sell_client_order_id,omitempty"`
	BuyExecutedQuantity  string `json:"buy_executed_quantity,omitempty"`
	SellExecutedQuantity string `json:"sell_executed_quantity,omitempty"`
	Notes                string `json:"notes,omitempty"`
	CreatedAt            string `json:"created_at"`
}

func toSignalView(sig types.TradeSignal) signalView {
	return signalView{
		ID:                   sig.ID,
		AssetName:            sig.AssetName,
		Pair:                 sig.Pair,
		StrategyName:         sig.StrategyName,
		Status:               string(sig.Status),
		EntryPrice:           sig.EntryPrice.String(),
		ExitPrice:            sig.ExitPrice.String(),
		BuyClientOrderID:     sig.BuyClientOrderID,
		SellClientOrderID:    sig.SellClientOrderID,
		BuyExecutedQuantity:  sig.BuyExecutedQuantity.String(),
		SellExecutedQuantity: sig.SellExecutedQuantity.String(),
		Notes:                sig.Notes,
		CreatedAt:            sig.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *handlers) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) handleSignals(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		signals []types.TradeSignal
		err     error
	)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		signals, err = h.signals.SignalsByStatus(ctx, types.Status(strings.ToUpper(status)))
	} else {
		limit := 100
		if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
			n, convErr := strconv.Atoi(raw)
			if convErr != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}
		signals, err = h.signals.RecentSignals(ctx, limit)
	}
	if err != nil {
		logger.Errorf("[api] signals list failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	views := make([]signalView, 0, len(signals))
	for _, sig := range signals {
		views = append(views, toSignalView(sig))
	}
	c.JSON(http.StatusOK, gin.H{"signals": views, "count": len(views)})
}

func (h *handlers) handleSignalDetail(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	if id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signal id"})
		return
	}
	ctx := c.Request.Context()
	sig, found, err := h.signals.SignalByID(ctx, id)
	if err != nil {
		logger.Errorf("[api] signal detail failed ip=%s id=%d err=%v", c.ClientIP(), id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "signal not found"})
		return
	}
	var events []store.SignalEvent
	if h.events != nil {
		if evts, err := h.events.ListSignalEvents(ctx, id, 100); err == nil {
			events = evts
		} else {
			logger.Warnf("[api] signal events load failed id=%d err=%v", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"signal": toSignalView(sig), "events": events})
}

func (h *handlers) handleReport(c *gin.Context) {
	signals, err := h.signals.SignalsByStatus(c.Request.Context(), types.StatusSellOrderFilled)
	if err != nil {
		logger.Errorf("[api] report failed ip=%s err=%v", c.ClientIP(), err)
		c.String(http.StatusInternalServerError, "report unavailable: %v", err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderTrades(c.Writer, signals); err != nil {
		logger.Errorf("[api] report render failed err=%v", err)
	}
}
