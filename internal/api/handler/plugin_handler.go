package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

// PluginHandler serves upload, download, delete and listing of plugins.
type PluginHandler struct {
	service   ports.PluginService
	maxUpload int64
}

func NewPluginHandler(service ports.PluginService, maxUpload int64) *PluginHandler {
	return &PluginHandler{service: service, maxUpload: maxUpload}
}

type pluginResponse struct {
	ID         string `json:"id"`
	ArtifactID string `json:"artifact_id"`
	GroupID    string `json:"group_id"`
	Version    string `json:"version"`
	UploadedBy string `json:"uploaded_by,omitempty"`
	Size       int64  `json:"size"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func toPluginResponse(p *domain.Plugin) pluginResponse {
	resp := pluginResponse{
		ID:         p.ID.String(),
		ArtifactID: p.ArtifactID,
		GroupID:    p.GroupID,
		Version:    p.Version,
		UploadedBy: p.UploadedBy,
		Size:       p.Size,
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// Upload handles POST /plugins.
//
// @Summary      Upload a plugin artifact
// @Tags         plugins
// @Accept       multipart/form-data
// @Produce      json
// @Security     BasicAuth
// @Param        file      formData  file    true  "Artifact bytes"
// @Param        metadata  formData  string  true  "JSON {artifact_id, group_id, version}"
// @Success      201       {object}  pluginResponse
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      413       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /plugins [post]
func (h *PluginHandler) Upload(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	rawMeta := c.FormValue("metadata")
	if rawMeta == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "metadata is required"})
	}
	var meta ports.PluginMetadata
	if err := json.Unmarshal([]byte(rawMeta), &meta); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "metadata is not valid JSON"})
	}
	if err := c.Validate(&meta); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read uploaded file: %w", err)
	}

	plugin, err := h.service.Upload(c.Request().Context(), id, meta, data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toPluginResponse(plugin))
}

// Download handles GET /plugins/:id.
//
// @Summary      Download a plugin artifact
// @Tags         plugins
// @Produce      octet-stream
// @Security     BasicAuth
// @Param        id   path      string  true  "Plugin id"
// @Success      200  {file}    binary
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /plugins/{id} [get]
func (h *PluginHandler) Download(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	pluginID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid plugin id"})
	}

	plugin, data, err := h.service.Download(c.Request().Context(), id, pluginID)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s-%s.jar", plugin.ArtifactID, plugin.Version)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

// Delete handles DELETE /plugins/:id.
//
// @Summary      Delete a plugin
// @Tags         plugins
// @Security     BasicAuth
// @Param        id   path      string  true  "Plugin id"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /plugins/{id} [delete]
func (h *PluginHandler) Delete(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	pluginID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid plugin id"})
	}

	if err := h.service.Delete(c.Request().Context(), id, pluginID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /plugins.
//
// @Summary   List plugins
// @Tags      plugins
// @Produce   json
// @Security  BasicAuth
// @Success   200  {array}   pluginResponse
// @Failure   401  {object}  map[string]string
// @Router    /plugins [get]
func (h *PluginHandler) List(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	plugins, err := h.service.List(c.Request().Context(), id)
	if err != nil {
		return err
	}

	out := make([]pluginResponse, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, toPluginResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}
