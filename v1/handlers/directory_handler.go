package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/raven2t2/importiq-backend/shared/utils"
	"github.com/raven2t2/importiq-backend/v1/middleware"
	"github.com/raven2t2/importiq-backend/v1/models"
	"github.com/raven2t2/importiq-backend/v1/services"
)

// handleVehicles handles auction listing search and lookup
func (h *V1Handler) handleVehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/vehicles")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// Collection endpoint: GET /api/v1/vehicles
	if len(parts) == 1 && parts[0] == "" {
		params := &services.AuctionSearchParams{
			Make:     r.URL.Query().Get("make"),
			Model:    r.URL.Query().Get("model"),
			YearMin:  queryInt(r, "yearMin"),
			YearMax:  queryInt(r, "yearMax"),
			PriceMax: queryFloat(r, "priceMax"),
			Source:   r.URL.Query().Get("source"),
			Page:     queryInt(r, "page"),
			PageSize: queryInt(r, "pageSize"),
		}

		auctions, total, err := h.vehicleService.SearchAuctions(r.Context(), params)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		utils.RespondWithSuccess(w, http.StatusOK, map[string]interface{}{
			"items": auctions,
			"count": len(auctions),
			"total": total,
		})
		return
	}

	// Specific listing: GET /api/v1/vehicles/:auctionId
	if len(parts) == 1 {
		auction, err := h.vehicleService.GetAuction(r.Context(), parts[0])
		if err != nil {
			if errors.Is(err, services.ErrAuctionNotFound) {
				utils.RespondWithError(w, http.StatusNotFound, "Auction listing not found")
				return
			}
			slog.Error("Failed to load auction", "error", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load auction")
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, auction)
		return
	}

	utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
}

// handleComplianceRules serves compliance reference data
func (h *V1Handler) handleComplianceRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/compliance-rules")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// Collection endpoint: GET /api/v1/compliance-rules?country=&region=
	if len(parts) == 1 && parts[0] == "" {
		rules, err := h.complianceService.ListRules(r.Context(), r.URL.Query().Get("country"), r.URL.Query().Get("region"))
		if err != nil {
			slog.Error("Failed to list compliance rules", "error", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list compliance rules")
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, &models.CollectionResponse{Items: rules, Count: len(rules)})
		return
	}

	// Specific rule: GET /api/v1/compliance-rules/:ruleId
	if len(parts) == 1 {
		rule, err := h.complianceService.GetRule(r.Context(), parts[0])
		if err != nil {
			if errors.Is(err, services.ErrRuleNotFound) {
				utils.RespondWithError(w, http.StatusNotFound, "Compliance rule not found")
				return
			}
			slog.Error("Failed to load compliance rule", "error", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load compliance rule")
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, rule)
		return
	}

	utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
}

// handleDutyRates serves tariff reference data
func (h *V1Handler) handleDutyRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	rates, err := h.complianceService.ListDutyRates(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		slog.Error("Failed to list duty rates", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list duty rates")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, &models.CollectionResponse{Items: rates, Count: len(rates)})
}

// handleModShops handles the shop directory and reviews
func (h *V1Handler) handleModShops(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/mod-shops")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	// Collection endpoint: GET /api/v1/mod-shops?state=&specialty=
	if len(parts) == 1 && parts[0] == "" {
		if r.Method != http.MethodGet {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		shops, err := h.shopService.SearchShops(r.Context(), r.URL.Query().Get("state"), r.URL.Query().Get("specialty"))
		if err != nil {
			slog.Error("Failed to search shops", "error", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to search shops")
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, &models.CollectionResponse{Items: shops, Count: len(shops)})
		return
	}

	if len(parts) < 1 || parts[0] == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Shop ID is required")
		return
	}

	shopID := parts[0]

	// Specific shop endpoint: GET /api/v1/mod-shops/:shopId
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		shop, err := h.shopService.GetShop(r.Context(), shopID)
		if err != nil {
			if errors.Is(err, services.ErrShopNotFound) {
				utils.RespondWithError(w, http.StatusNotFound, "Shop not found")
				return
			}
			slog.Error("Failed to load shop", "error", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load shop")
			return
		}
		utils.RespondWithSuccess(w, http.StatusOK, shop)
		return
	}

	// Review endpoint: POST /api/v1/mod-shops/:shopId/reviews
	if len(parts) == 2 && parts[1] == "reviews" {
		if r.Method != http.MethodPost {
			utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req models.CreateReviewRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		review, err := h.shopService.AddReview(r.Context(), shopID, &req)
		if err != nil {
			middleware.LogAuditEvent(r, models.ResourceTypeReviews, nil, models.AuditStatusFailure)
			if errors.Is(err, services.ErrShopNotFound) {
				utils.RespondWithError(w, http.StatusNotFound, "Shop not found")
				return
			}
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		middleware.LogAuditEvent(r, models.ResourceTypeReviews, &review.ReviewID, models.AuditStatusSuccess)
		utils.RespondWithSuccess(w, http.StatusCreated, review)
		return
	}

	utils.RespondWithError(w, http.StatusNotFound, "Endpoint not found")
}

func queryInt(r *http.Request, key string) int {
	if value := r.URL.Query().Get(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return 0
}

func queryFloat(r *http.Request, key string) float64 {
	if value := r.URL.Query().Get(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return 0
}
