package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestPracticesCatalogLoads(t *testing.T) {
	catalog, err := NewBestPracticesAdapter()
	require.NoError(t, err)

	actions := catalog.Actions()
	assert.Contains(t, actions, "code-generation")
	assert.Contains(t, actions, "deployment")
	assert.Contains(t, actions, "security")
}

func TestBestPracticesQuery(t *testing.T) {
	catalog, err := NewBestPracticesAdapter()
	require.NoError(t, err)

	answer := catalog.Query("code-generation", "azapi")
	assert.Contains(t, answer, "## Using the azapi provider")
	assert.Contains(t, answer, "parent_id")
	assert.NotContains(t, answer, "remote backend")

	// general topic widens to everything under the action
	general := catalog.Query("code-generation", "general")
	assert.Contains(t, general, "## Writing Azure Terraform configurations")
	assert.Contains(t, general, "## Using the azapi provider")

	// input is trimmed and lowercased
	assert.Equal(t, answer, catalog.Query("  Code-Generation ", "AZAPI"))
}

func TestBestPracticesQueryUnknownAction(t *testing.T) {
	catalog, err := NewBestPracticesAdapter()
	require.NoError(t, err)

	answer := catalog.Query("time-travel", "")
	assert.Contains(t, answer, "No best practices recorded")
	assert.Contains(t, answer, "code-generation")
}
