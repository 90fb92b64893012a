package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jimmynenos/ordering-backend/api/responses"
	"github.com/jimmynenos/ordering-backend/api/validators"
	"github.com/jimmynenos/ordering-backend/internal/menu"
	"github.com/jimmynenos/ordering-backend/pkg/config"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
)

type searchRequest struct {
	Query    string  `json:"query" validate:"required"`
	Limit    int     `json:"limit" validate:"omitempty,gt=0,max=50"`
	MinScore float64 `json:"min_score" validate:"omitempty,gte=0,lte=1"`
}

type matchResponse struct {
	Item      *menu.Item `json:"item"`
	Score     float64    `json:"score"`
	MatchType string     `json:"match_type"`
}

type searchResponse struct {
	Matches     []matchResponse `json:"matches"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// MenuSearch runs the fuzzy matcher over the loaded catalog. When nothing
// clears the score floor the response carries close-call suggestions so the
// conversational layer can ask "did you mean".
func MenuSearch(svc *menu.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload searchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit := payload.Limit
		if limit == 0 {
			limit = cfg.SearchLimit
		}
		minScore := payload.MinScore
		if minScore == 0 {
			minScore = cfg.MinScore
		}

		matches, err := svc.Search(payload.Query, limit, minScore)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := searchResponse{Matches: make([]matchResponse, 0, len(matches))}
		for _, match := range matches {
			resp.Matches = append(resp.Matches, matchResponse{
				Item:      match.Item,
				Score:     match.Score,
				MatchType: string(match.MatchType),
			})
		}
		if len(matches) == 0 {
			if suggestions, err := svc.Suggestions(payload.Query, cfg.SuggestLimit, cfg.SuggestScore); err == nil {
				resp.Suggestions = suggestions
			}
		}

		responses.WriteSuccess(w, resp)
	}
}

func MenuCategories(svc *menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

func MenuItemsInCategory(svc *menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := chi.URLParam(r, "category")
		items, err := svc.ItemsInCategory(category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(items) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no category named %q", category)))
			return
		}
		responses.WriteSuccess(w, map[string]any{"category": category, "items": items})
	}
}

func MenuItem(svc *menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := menu.ItemID(chi.URLParam(r, "itemID"))
		item, err := svc.ItemByID(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if item == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no menu item with id %q", id)))
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func MenuSummary(svc *menu.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(cfg.MenuSummaryN)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"summary": summary})
	}
}
