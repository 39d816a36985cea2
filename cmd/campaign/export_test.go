package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/campaign-core/internal/domain/entities"
)

func sampleExport() campaignExport {
	created := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)
	return campaignExport{
		User: "alice",
		Entities: []*entities.Entity{
			{
				ID:          1,
				UserID:      1,
				Name:        "Drizzt",
				Type:        entities.EntityTypeNPC,
				Description: "Drow ranger | hero",
				Properties:  entities.NewProperties(entities.EntityTypeNPC),
				Tags:        []string{"hero", "drow"},
				CreatedAt:   created,
			},
			{
				ID:         2,
				UserID:     1,
				Name:       "Bryn Shander",
				Type:       entities.EntityTypeLocation,
				Properties: entities.NewProperties(entities.EntityTypeLocation),
				Tags:       []string{},
				CreatedAt:  created,
			},
		},
		Journals: []*entities.Journal{
			{
				ID:        1,
				UserID:    1,
				Title:     "Session 1",
				Content:   "# Session 1\nMet [Drizzt](entity/npc/1).\n",
				Tags:      []string{"recap"},
				CreatedAt: created,
			},
		},
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatJSON(&buf, sampleExport()))

	var parsed struct {
		User     string             `json:"user"`
		Entities []entities.Entity  `json:"entities"`
		Journals []entities.Journal `json:"journals"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	assert.Equal(t, "alice", parsed.User)
	require.Len(t, parsed.Entities, 2)
	assert.Equal(t, "Drizzt", parsed.Entities[0].Name)
	require.NotNil(t, parsed.Entities[0].Properties.NPC)
	assert.Equal(t, []string{"hero", "drow"}, parsed.Entities[0].Tags)
	require.Len(t, parsed.Journals, 1)
	assert.Equal(t, "Session 1", parsed.Journals[0].Title)
}

func TestFormatJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatJSON(&buf, campaignExport{User: "bob"}))
	assert.JSONEq(t, `{"user":"bob","entities":[],"journals":[]}`, buf.String())
}

func TestFormatMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatMarkdown(&buf, sampleExport()))

	result := buf.String()
	assert.True(t, strings.HasPrefix(result, "# Campaign of alice\n"))
	assert.Contains(t, result, "Entities: 2, journals: 1")
	assert.Contains(t, result, "## Npc")
	assert.Contains(t, result, "## Location")
	assert.NotContains(t, result, "## Creature")
	assert.Contains(t, result, "| Drizzt | Drow ranger \\| hero | hero, drow | `[Drizzt](entity/npc/1)` |")
	assert.Contains(t, result, "### Session 1")
	assert.Contains(t, result, "_2024-03-09_ · recap")
	assert.Contains(t, result, "Met [Drizzt](entity/npc/1).")
	assert.Less(t, strings.Index(result, "## Npc"), strings.Index(result, "## Location"))
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"a|b", "a\\|b"},
		{"line1\nline2", "line1 line2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeMarkdown(tt.input))
		})
	}
}
