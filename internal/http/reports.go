package http

import (
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/repository"
)

func listConversationsHandler(chRepo repository.CHConversationsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		f := repository.ConversationFilter{Limit: 50}

		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				f.Limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				f.Offset = n
			}
		}
		if v := c.QueryParam("customer_id"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				f.CustomerID = n
			}
		}
		if raw := strings.TrimSpace(c.QueryParam("channel")); raw != "" {
			if ch, ok := model.ParseChannel(raw); ok {
				f.Channel = ch
			}
		}
		if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
			st := model.ConversationStatus(raw)
			if st.Valid() {
				f.Status = st
			}
		}

		convs, err := chRepo.List(c.Request().Context(), f)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   f.Limit,
			"offset":  f.Offset,
			"count":   len(convs),
			"results": convs,
		})
	}
}
