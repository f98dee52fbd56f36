package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/planar-app/planar/internal/api/v1"
	"github.com/planar-app/planar/internal/tracker"
)

func TestCompleteTask(t *testing.T) {
	t.Parallel()

	workspaceID := uuid.New()
	taskID := uuid.New()

	t.Run("applied", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterSyncRoutes(api, &mockSyncer{
			toggleFunc: func(_ context.Context, wid, tid uuid.UUID, completed bool) (*tracker.Outcome, error) {
				assert.Equal(t, workspaceID, wid)
				assert.Equal(t, taskID, tid)
				assert.True(t, completed)
				return &tracker.Outcome{Kind: tracker.OutcomeApplied}, nil
			},
		})

		resp := api.PostCtx(workspaceCtx(workspaceID), "/tasks/"+taskID.String()+"/complete", map[string]any{
			"completed": true,
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body tracker.Outcome
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, tracker.OutcomeApplied, body.Kind)
	})

	t.Run("transition_picker_surfaced", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterSyncRoutes(api, &mockSyncer{
			toggleFunc: func(context.Context, uuid.UUID, uuid.UUID, bool) (*tracker.Outcome, error) {
				return &tracker.Outcome{
					Kind:        tracker.OutcomeAwaitingTransition,
					Transitions: []tracker.Transition{{ID: "31", Name: "Done"}},
				}, nil
			},
		})

		resp := api.PostCtx(workspaceCtx(workspaceID), "/tasks/"+taskID.String()+"/complete", map[string]any{
			"completed": true,
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body tracker.Outcome
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, tracker.OutcomeAwaitingTransition, body.Kind)
		require.Len(t, body.Transitions, 1)
		assert.Equal(t, "Done", body.Transitions[0].Name)
	})
}

func TestSyncDecision(t *testing.T) {
	t.Parallel()

	workspaceID := uuid.New()
	taskID := uuid.New()

	t.Run("transition_choice_forwarded", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterSyncRoutes(api, &mockSyncer{
			decideFunc: func(_ context.Context, _, _ uuid.UUID, d tracker.Decision) (*tracker.Outcome, error) {
				assert.Equal(t, tracker.DecisionTransition, d.Kind)
				assert.Equal(t, "31", d.TransitionID)
				return &tracker.Outcome{Kind: tracker.OutcomeApplied}, nil
			},
		})

		resp := api.PostCtx(workspaceCtx(workspaceID), "/tasks/"+taskID.String()+"/sync-decision", map[string]any{
			"kind":          "transition",
			"transition_id": "31",
		})
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("no_pending_prompt", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterSyncRoutes(api, &mockSyncer{
			decideFunc: func(context.Context, uuid.UUID, uuid.UUID, tracker.Decision) (*tracker.Outcome, error) {
				return nil, tracker.ErrNoPendingSync
			},
		})

		resp := api.PostCtx(workspaceCtx(workspaceID), "/tasks/"+taskID.String()+"/sync-decision", map[string]any{
			"kind": "confirm",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
