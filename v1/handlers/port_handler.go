package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/raven2t2/importiq-backend/shared/utils"
	"github.com/raven2t2/importiq-backend/v1/models"
	"github.com/raven2t2/importiq-backend/v1/services"
)

func (h *V1Handler) handlePortIntelligence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	country := r.URL.Query().Get("country")
	region := r.URL.Query().Get("region")

	ports, err := h.portService.ListPorts(r.Context(), country, region)
	if err != nil {
		slog.Error("Failed to list ports", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list ports")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, &models.CollectionResponse{Items: ports, Count: len(ports)})
}

func (h *V1Handler) handlePortRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.PortRecommendationRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	recs, err := h.portService.Recommend(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrPortNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "No ports found for the requested region")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, &models.CollectionResponse{Items: recs, Count: len(recs)})
}

func (h *V1Handler) handlePortCostCalculator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.PortCostRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	resp, err := h.portService.CalculateCost(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrPortNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Port not found")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, resp)
}

func (h *V1Handler) handlePortComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.PortComparisonRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	resp, err := h.portService.ComparePorts(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrPortNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, resp)
}
