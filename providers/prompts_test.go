package providers

import (
	"testing"

	"game-forge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhancePrompt(t *testing.T) {
	prompt, err := EnhancePrompt("a cat chasing <mice> & yarn")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Original prompt: a cat chasing <mice> & yarn\n")
	assert.Contains(t, prompt, "PhaserJS")
}

func TestGeneratePrompt(t *testing.T) {
	concept := models.EnhancedPromptInput{Kind: models.PromptKindText, Text: "Dodge falling rocks"}.Normalize()
	prompt, err := GeneratePrompt(concept)
	require.NoError(t, err)

	for _, line := range []string{
		"Title: " + models.DefaultTitle,
		"Description: Dodge falling rocks",
		"Genre: " + models.DefaultGenre,
		"Game Mechanics: " + models.DefaultMechanics,
		"Visual Style: " + models.DefaultVisualStyle,
		"Controls: " + models.DefaultControls,
		"Objectives: " + models.DefaultObjectives,
		"https://cdn.jsdelivr.net/npm/phaser@3.80.1/dist/phaser.min.js",
	} {
		assert.Contains(t, prompt, line)
	}
	assert.Contains(t, prompt, "fillPoints(points, closeShape=true)")
	assert.NotContains(t, prompt, "fillPolygon", "Phaser 3 Graphics has no fillPolygon")
}

func TestUpdatePrompt(t *testing.T) {
	prompt, err := UpdatePrompt("<html><script>let x = {{a}};</script></html>", "make it faster")
	require.NoError(t, err)
	assert.Contains(t, prompt, "<html><script>let x = {{a}};</script></html>")
	assert.Contains(t, prompt, "Please update the game based on this feedback: make it faster")
}
