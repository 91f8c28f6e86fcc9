package handlers

import (
	"net/http"

	"github.com/raven2t2/importiq-backend/shared/utils"
	"github.com/raven2t2/importiq-backend/v1/models"
)

func (h *V1Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CalculateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	resp, err := h.costService.Calculate(&req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, resp)
}

// handleCalculateUS is the US-specific entry point; the destination is
// forced regardless of the request body.
func (h *V1Handler) handleCalculateUS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CalculateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	req.DestinationCountry = "US"

	resp, err := h.costService.Calculate(&req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, resp)
}

func (h *V1Handler) handleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.ComplianceCheckRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	resp, err := h.complianceService.CheckBuild(&req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, resp)
}

func (h *V1Handler) handleModEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.ModEstimateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	resp, err := h.shopService.EstimateMods(&req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, resp)
}
