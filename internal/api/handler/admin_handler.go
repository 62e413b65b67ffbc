package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cogere/artifact-host/internal/core/ports"
)

type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type machineKeyResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	GroupID     string `json:"group_id"`
}

// ListMachineKeys handles GET /machine-keys. Secret hashes are never returned.
//
// @Summary   List machine keys
// @Tags      admin
// @Produce   json
// @Security  BasicAuth
// @Success   200  {array}   machineKeyResponse
// @Failure   401  {object}  map[string]string
// @Failure   403  {object}  map[string]string
// @Router    /machine-keys [get]
func (h *AdminHandler) ListMachineKeys(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	keys, err := h.service.ListMachineKeys(c.Request().Context(), id)
	if err != nil {
		return err
	}

	out := make([]machineKeyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, machineKeyResponse{
			ID:          k.ID.String(),
			Description: k.Description,
			GroupID:     k.GroupID.String(),
		})
	}
	return c.JSON(http.StatusOK, out)
}
