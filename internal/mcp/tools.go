package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/pivotfit/internal/catalog"
	"github.com/meltforce/pivotfit/internal/quota"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog. Optionally filter by movement pattern."),
	mcp.WithString("pattern", mcp.Description("Movement pattern to filter by (e.g. 'Horizontal Push', 'Hip Hinge')")),
)

var toolFindAlternatives = mcp.NewTool("find_alternatives",
	mcp.WithDescription("Find substitute exercises for a catalog exercise: same movement pattern, different equipment preferred."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Catalog id of the exercise to substitute")),
	mcp.WithNumber("count", mcp.Description("How many alternatives to return. Defaults to 3.")),
)

var toolGetDayLog = mcp.NewTool("get_day_log",
	mcp.WithDescription("Read the stored training state for one program day: swapped slots, logged sets and custom set counts."),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("0-based day offset from program start")),
)

var toolGetSwapQuota = mcp.NewTool("get_swap_quota",
	mcp.WithDescription("Report the monthly exercise-swap allowance: used, remaining, or unlimited for subscribed identities."),
)

var toolGetFavorites = mcp.NewTool("get_favorites",
	mcp.WithDescription("List favorited exercises."),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern := req.GetString("pattern", "")

	all := h.deps.Catalog.All()
	out := make([]catalog.Exercise, 0, len(all))
	for _, ex := range all {
		if pattern != "" && ex.Pattern != pattern {
			continue
		}
		out = append(out, ex)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) findAlternatives(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	count := req.GetInt("count", 3)
	if count < 0 {
		return mcp.NewToolResultError("count must not be negative"), nil
	}

	alts := h.deps.Engine.FindAlternatives(catalog.ExerciseID(id), count)
	if alts == nil {
		alts = []catalog.Exercise{}
	}

	result, err := mcp.NewToolResultJSON(alts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDayLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := req.RequireInt("day")
	if err != nil || day < 0 {
		return mcp.NewToolResultError("day parameter is required and must not be negative"), nil
	}

	log, err := h.deps.Store.DayLog(ctx, day)
	if err != nil {
		h.deps.Log.Error("mcp get_day_log", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(log)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSwapQuota(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	unlimited, err := h.deps.Entitlements.HasUnlimitedSwaps(ctx)
	if err != nil {
		h.deps.Log.Error("mcp get_swap_quota", "error", err)
		return mcp.NewToolResultError("entitlement read failed: " + err.Error()), nil
	}

	out := map[string]any{"unlimited": unlimited}
	if !unlimited {
		remaining, err := h.deps.Quota.Remaining(ctx)
		if err != nil {
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		used, err := h.deps.Quota.Used(ctx)
		if err != nil {
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		out["allowance"] = quota.MonthlyAllowance
		out["used"] = used
		out["remaining"] = remaining
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getFavorites(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := h.deps.Store.Favorites(ctx)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]catalog.Exercise, 0, len(ids))
	for _, id := range ids {
		if ex, ok := h.deps.Catalog.ByID(id); ok {
			out = append(out, ex)
		}
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) catalogResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.deps.Catalog.All())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
